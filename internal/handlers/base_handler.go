package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/middlewares"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// HandleError maps err to its status and client-facing message.
// Unexpected failures are logged with full detail and reported as "internal server error".
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status, message := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("failed to "+action,
			zap.String("request_id", middlewares.GetRequestID(r.Context())),
			zap.Error(err),
		)
	}
	h.RespondError(w, status, message)
}

// DecodeJSON decodes the request body into dst and writes the error response on failure.
// An empty body is accepted when optional is true.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	h.RespondError(w, http.StatusBadRequest, "invalid request body")
	return false
}

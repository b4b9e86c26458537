package middlewares

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/portfoliohub/backend/internal/apperrors"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a 500 response and logs it with the stack
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// the server must still abort the connection
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("error", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": apperrors.InternalMessage})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

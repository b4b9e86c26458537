package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/auth/middleware"
	"github.com/portfoliohub/backend/internal/models"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for profile business logic
type ProfileService interface {
	// GetProfile retrieves the account of the authenticated user
	//
	// "userID" parameter is used to identify the user.
	//
	// If user with such ID does not exist, apperrors.ErrUserNotFound will be returned together with "nil" value.
	GetProfile(ctx context.Context, userID int) (*models.User, error)
}

// ProfileHandler handles profile and role-gated HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/auth/profile", h.GetProfile)
		r.With(middleware.RoleMiddleware(h.Logger, models.RoleAdmin)).Get("/auth/admin", h.AdminArea)
		r.With(middleware.RoleMiddleware(h.Logger, models.RoleEditor, models.RoleAdmin)).Get("/auth/editor", h.EditorArea)
	})
}

// GetProfile handles GET /auth/profile
// @Summary Get user profile
// @Description Get the authenticated user's account without password hash or two-factor secret
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "Access token required"
// @Failure 403 {object} map[string]string "Invalid token"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		h.HandleError(w, r, "get profile", apperrors.ErrMissingToken)
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), authCtx.UserID)
	if err != nil {
		h.HandleError(w, r, "get profile", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// AdminArea handles GET /auth/admin
// @Summary Admin-only acknowledgment
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} map[string]string "Access token required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /auth/admin [get]
func (h *ProfileHandler) AdminArea(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Admin access granted"})
}

// EditorArea handles GET /auth/editor
// @Summary Editor or admin acknowledgment
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} map[string]string "Access token required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /auth/editor [get]
func (h *ProfileHandler) EditorArea(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Editor access granted"})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/auth/middleware"
	"github.com/portfoliohub/backend/internal/models"
	"github.com/portfoliohub/backend/internal/services"
	"go.uber.org/zap"
)

const registeredMessage = "User registered successfully. Scan the QR code with your authenticator app to enable two-factor authentication."

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the request, creates an editor account and enrolls it in two-factor authentication.
	//
	// "req" parameter contains the account fields.
	//
	// If validation fails or username or email is taken, the error will be returned together with "nil" value.
	// A failed welcome email does not fail the call; it is reported in RegistrationResult.NotificationErr.
	Register(ctx context.Context, req *models.RegisterRequest) (*services.RegistrationResult, error)
	// Method Login checks credentials and the two-factor code and issues a token pair.
	//
	// "req" parameter contains username, password and an optional two-factor code.
	//
	// If credentials or the code are wrong, or the code is missing for an enrolled account, the error will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error)
	// Method Refresh exchanges a refresh token for a new access token.
	//
	// "refreshToken" parameter is the token issued at login.
	//
	// If the token is missing, invalid, revoked or its owner no longer exists, the error will be returned together with an empty string.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Method Logout revokes the access token the request was made with and, if valid, the given refresh token.
	//
	// If the deny-list cannot be written, the error will be returned.
	Logout(ctx context.Context, accessTokenID string, accessExpiresAt time.Time, refreshToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes.
// credentialsLimiter wraps register and login and may be nil.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware, credentialsLimiter func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if credentialsLimiter != nil {
			r.Use(credentialsLimiter)
		}
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
	})
	r.Post("/auth/refresh-token", h.Refresh)
	r.With(authMiddleware).Post("/auth/logout", h.Logout)
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Create an editor account and enroll it in two-factor authentication. The QR code is returned only once.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.RegisterResponse
// @Failure 400 {object} map[string]string "Invalid request or username/email already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.DecodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.HandleError(w, r, "register user", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: registeredMessage,
		QRCode:  result.QRCode,
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with username and password. Accounts with two-factor authentication also require twoFACode.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.TokenPair
// @Failure 400 {object} map[string]string "Invalid request body or two-factor code required"
// @Failure 401 {object} map[string]string "Invalid credentials or two-factor code"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.DecodeJSON(w, r, &req, false) {
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.HandleError(w, r, "login user", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh-token
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh request"
// @Success 200 {object} models.RefreshResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Refresh token required"
// @Failure 403 {object} map[string]string "Invalid refresh token"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/refresh-token [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !h.DecodeJSON(w, r, &req, true) {
		return
	}

	accessToken, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(w, r, "refresh token", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.RefreshResponse{AccessToken: accessToken})
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Revoke the current access token and, if given, the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.LogoutRequest false "Optional refresh token to revoke"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} map[string]string "Access token required"
// @Failure 403 {object} map[string]string "Invalid token"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		h.HandleError(w, r, "logout user", apperrors.ErrMissingToken)
		return
	}

	var req models.LogoutRequest
	if !h.DecodeJSON(w, r, &req, true) {
		return
	}

	if err := h.authService.Logout(r.Context(), authCtx.TokenID, authCtx.ExpiresAt, req.RefreshToken); err != nil {
		h.HandleError(w, r, "logout user", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

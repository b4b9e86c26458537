package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/auth/service"
	"github.com/portfoliohub/backend/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const authContextKey contextKey = "authContext"

// AuthContext is the identity attached to an authenticated request
type AuthContext struct {
	UserID int
	Role   models.Role
	Email  string
	// TokenID and ExpiresAt describe the access token the request was made with
	TokenID   string
	ExpiresAt time.Time
}

// UserLookup loads the account behind a token
type UserLookup interface {
	// GetByID retrieves a user by ID
	//
	// "id" parameter is used to retrieve a user by ID.
	//
	// If the user does not exist, apperrors.ErrUserNotFound will be returned.
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// RevocationChecker reports whether a token ID has been logged out
type RevocationChecker interface {
	// IsRevoked reports whether the token ID is on the deny-list
	//
	// "jti" parameter is the token ID to check.
	//
	// If some error occurs during the lookup, the error will be returned together with "false" value.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware validates the bearer access token, resolves the user and stores an AuthContext in the request context.
// revoked may be nil, in which case the deny-list is not consulted.
func AuthMiddleware(tokenGenerator *service.TokenGenerator, users UserLookup, revoked RevocationChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, err := authenticate(r, tokenGenerator, users, revoked)
			if err != nil {
				writeError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), authContextKey, authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, tokenGenerator *service.TokenGenerator, users UserLookup, revoked RevocationChecker) (*AuthContext, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, apperrors.ErrMissingToken
	}

	claims, err := tokenGenerator.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	if revoked != nil {
		isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if isRevoked {
			return nil, fmt.Errorf("%w: token has been revoked", apperrors.ErrInvalidToken)
		}
	}

	user, err := users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}

	authCtx := &AuthContext{
		UserID:  user.ID,
		Role:    user.Role,
		Email:   user.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		authCtx.ExpiresAt = claims.ExpiresAt.Time
	}
	return authCtx, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// GetAuthContext retrieves the authenticated identity from context
func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	authCtx, ok := ctx.Value(authContextKey).(*AuthContext)
	return authCtx, ok && authCtx != nil
}

// WithAuthContext returns a copy of ctx carrying authCtx
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, msg := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("authentication failed", zap.Error(err))
	} else if !errors.Is(err, apperrors.ErrMissingToken) {
		logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package middleware

import (
	"net/http"
	"slices"

	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/models"
	"go.uber.org/zap"
)

// Authorize returns apperrors.ErrForbidden unless the caller's role is one of roles
func Authorize(authCtx *AuthContext, roles ...models.Role) error {
	if authCtx == nil {
		return apperrors.ErrForbidden
	}
	if !slices.Contains(roles, authCtx.Role) {
		return apperrors.ErrForbidden
	}
	return nil
}

// RoleMiddleware admits requests whose AuthContext role is one of roles.
// It must run after AuthMiddleware.
func RoleMiddleware(logger *zap.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, _ := GetAuthContext(r.Context())
			if err := Authorize(authCtx, roles...); err != nil {
				writeError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

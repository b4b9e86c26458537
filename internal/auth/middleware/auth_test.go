package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/auth/service"
	"github.com/portfoliohub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockUserLookup is a mock implementation of UserLookup
type mockUserLookup struct {
	users map[int]*models.User
	err   error
}

func (m *mockUserLookup) GetByID(ctx context.Context, id int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// mockRevocationChecker is a mock implementation of RevocationChecker
type mockRevocationChecker struct {
	revoked map[string]bool
	err     error
}

func (m *mockRevocationChecker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.revoked[jti], nil
}

func newTestTokenGenerator() *service.TokenGenerator {
	return service.NewTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
}

func newTestUsers() *mockUserLookup {
	return &mockUserLookup{users: map[int]*models.User{
		1: {ID: 1, Username: "root", Email: "root@example.com", Role: models.RoleAdmin},
		2: {ID: 2, Username: "alice", Email: "alice@example.com", Role: models.RoleEditor},
	}}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	tg := newTestTokenGenerator()
	aliceToken, refreshToken, err := tg.GenerateTokens(2)
	require.NoError(t, err)
	ghostToken, err := tg.GenerateAccessToken(99)
	require.NoError(t, err)
	aliceClaims, err := tg.ValidateAccessToken(aliceToken)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		users          *mockUserLookup
		revoked        RevocationChecker
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success",
			header:         "Bearer " + aliceToken,
			users:          newTestUsers(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "lowercase scheme",
			header:         "bearer " + aliceToken,
			users:          newTestUsers(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			header:         "",
			users:          newTestUsers(),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "access token required",
		},
		{
			name:           "wrong scheme",
			header:         "Basic " + aliceToken,
			users:          newTestUsers(),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "access token required",
		},
		{
			name:           "garbage token",
			header:         "Bearer garbage",
			users:          newTestUsers(),
			expectedStatus: http.StatusForbidden,
			expectedError:  "invalid token",
		},
		{
			name:           "refresh token used as access token",
			header:         "Bearer " + refreshToken,
			users:          newTestUsers(),
			expectedStatus: http.StatusForbidden,
			expectedError:  "invalid token",
		},
		{
			name:           "revoked token",
			header:         "Bearer " + aliceToken,
			users:          newTestUsers(),
			revoked:        &mockRevocationChecker{revoked: map[string]bool{aliceClaims.ID: true}},
			expectedStatus: http.StatusForbidden,
			expectedError:  "invalid token",
		},
		{
			name:           "revocation store down",
			header:         "Bearer " + aliceToken,
			users:          newTestUsers(),
			revoked:        &mockRevocationChecker{err: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
		{
			name:           "user no longer exists",
			header:         "Bearer " + ghostToken,
			users:          newTestUsers(),
			expectedStatus: http.StatusNotFound,
			expectedError:  "user not found",
		},
		{
			name:           "user lookup fails",
			header:         "Bearer " + aliceToken,
			users:          &mockUserLookup{err: errors.New("database error")},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *AuthContext
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = GetAuthContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := AuthMiddleware(tg, tt.users, tt.revoked, zap.NewNop())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				require.NotNil(t, got)
				assert.Equal(t, 2, got.UserID)
				assert.Equal(t, models.RoleEditor, got.Role)
				assert.Equal(t, "alice@example.com", got.Email)
				assert.Equal(t, aliceClaims.ID, got.TokenID)
				assert.WithinDuration(t, aliceClaims.ExpiresAt.Time, got.ExpiresAt, time.Second)
				return
			}

			assert.Nil(t, got)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.expectedError, decodeError(t, w))
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	tg := newTestTokenGenerator().WithClock(func() time.Time { return issued })
	token, err := tg.GenerateAccessToken(2)
	require.NoError(t, err)

	// validation uses the real clock
	handler := AuthMiddleware(newTestTokenGenerator(), newTestUsers(), nil, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "invalid token", decodeError(t, w))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "valid", header: "Bearer abc", expected: "abc"},
		{name: "extra spaces", header: "Bearer   abc", expected: "abc"},
		{name: "no token", header: "Bearer", expected: ""},
		{name: "too many parts", header: "Bearer abc def", expected: ""},
		{name: "empty", header: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, BearerToken(req))
		})
	}
}

func TestGetAuthContext(t *testing.T) {
	_, ok := GetAuthContext(context.Background())
	assert.False(t, ok)

	ctx := WithAuthContext(context.Background(), &AuthContext{UserID: 5, Role: models.RoleAdmin})
	authCtx, ok := GetAuthContext(ctx)
	require.True(t, ok)
	assert.Equal(t, 5, authCtx.UserID)
}

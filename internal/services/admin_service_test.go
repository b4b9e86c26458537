package services

import (
	"context"
	"errors"
	"testing"

	"github.com/portfoliohub/backend/internal/auth/password"
	"github.com/portfoliohub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminService_EnsureAdmin(t *testing.T) {
	hasher := password.NewHasher(bcrypt.MinCost)

	tests := []struct {
		name            string
		account         AdminAccount
		setupRepo       func(repo *mockUserRepository)
		expectedCreated bool
		expectedError   bool
	}{
		{
			name:            "creates admin",
			account:         AdminAccount{Username: "admin", Password: "admin-pass", Email: "Admin@Example.com"},
			setupRepo:       func(repo *mockUserRepository) {},
			expectedCreated: true,
		},
		{
			name:    "admin already exists",
			account: AdminAccount{Username: "admin", Password: "admin-pass", Email: "admin@example.com"},
			setupRepo: func(repo *mockUserRepository) {
				repo.users[1] = &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}
				repo.nextID = 2
			},
			expectedCreated: false,
		},
		{
			name:            "not configured",
			account:         AdminAccount{},
			setupRepo:       func(repo *mockUserRepository) {},
			expectedCreated: false,
		},
		{
			name:          "missing password",
			account:       AdminAccount{Username: "admin", Email: "admin@example.com"},
			setupRepo:     func(repo *mockUserRepository) {},
			expectedError: true,
		},
		{
			name:    "store unavailable",
			account: AdminAccount{Username: "admin", Password: "admin-pass", Email: "admin@example.com"},
			setupRepo: func(repo *mockUserRepository) {
				repo.existsErr = errors.New("database error")
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockUserRepository()
			tt.setupRepo(repo)
			svc := NewAdminService(repo, hasher, zap.NewNop())

			created, err := svc.EnsureAdmin(context.Background(), tt.account)

			if tt.expectedError {
				assert.Error(t, err)
				assert.False(t, created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCreated, created)
		})
	}
}

func TestAdminService_EnsureAdmin_Record(t *testing.T) {
	hasher := password.NewHasher(bcrypt.MinCost)
	repo := newMockUserRepository()
	svc := NewAdminService(repo, hasher, zap.NewNop())

	created, err := svc.EnsureAdmin(context.Background(), AdminAccount{
		Username: " admin ",
		Password: "admin-pass",
		Email:    "Admin@Example.com",
	})
	require.NoError(t, err)
	require.True(t, created)

	admin, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.Equal(t, "Admin", admin.FirstName)
	assert.Equal(t, "User", admin.LastName)
	assert.False(t, admin.HasTwoFactor())

	ok, err := hasher.Verify("admin-pass", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// second run is a no-op
	created, err = svc.EnsureAdmin(context.Background(), AdminAccount{Username: "admin", Password: "other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.users, 1)
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/portfoliohub/backend/internal/auth/password"
	"github.com/portfoliohub/backend/internal/models"
	"go.uber.org/zap"
)

// AdminAccount describes the administrator seeded at startup
type AdminAccount struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// AdminUserRepository is the interface that wraps methods needed to seed the administrator
type AdminUserRepository interface {
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// "username" parameter is used to check if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
}

// adminService implements AdminService
type adminService struct {
	userRepo AdminUserRepository
	hasher   *password.Hasher
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, hasher *password.Hasher, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

// EnsureAdmin creates the administrator account unless a user with that username already exists.
// It reports whether an account was created. The seeded admin has no two-factor secret.
func (s *adminService) EnsureAdmin(ctx context.Context, account AdminAccount) (bool, error) {
	username := strings.TrimSpace(account.Username)
	if username == "" {
		return false, nil
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("admin account already exists", zap.String("username", username))
		return false, nil
	}

	if account.Password == "" {
		return false, fmt.Errorf("admin password is required")
	}
	hash, err := s.hasher.Hash(account.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	firstName := account.FirstName
	if firstName == "" {
		firstName = "Admin"
	}
	lastName := account.LastName
	if lastName == "" {
		lastName = "User"
	}

	admin := &models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(account.Email)),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		FirstName:    firstName,
		LastName:     lastName,
		Age:          30,
		Gender:       "other",
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, err
	}

	s.logger.Info("admin account created", zap.Int("user_id", admin.ID), zap.String("username", username))
	return true, nil
}

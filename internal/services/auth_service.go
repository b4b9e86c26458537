package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/auth/password"
	"github.com/portfoliohub/backend/internal/auth/service"
	"github.com/portfoliohub/backend/internal/auth/totp"
	"github.com/portfoliohub/backend/internal/middlewares"
	"github.com/portfoliohub/backend/internal/models"
	"github.com/portfoliohub/backend/internal/notifications"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user. Its ID is filled on success.
	//
	// If username or email is already taken, *apperrors.DuplicateFieldError will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByUsername retrieves a user by username.
	//
	// "username" parameter is used to retrieve a user by username.
	//
	// If user with such username does not exist, apperrors.ErrUserNotFound will be returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "id" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, apperrors.ErrUserNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// "username" parameter is used to check if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// TokenRevoker is the interface that wraps the token deny-list
type TokenRevoker interface {
	// Method Revoke puts a token ID on the deny-list until ttl elapses.
	//
	// "jti" parameter is the token ID, "ttl" is the token's remaining lifetime.
	//
	// If some error occurs while writing the entry, the error will be returned.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// Method IsRevoked reports whether a token ID is on the deny-list.
	//
	// "jti" parameter is the token ID to check.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// LoginRecorder counts login attempts by outcome
type LoginRecorder interface {
	RecordLoginAttempt(outcome string)
}

// RegistrationResult is the outcome of a successful registration.
// NotificationErr is set when the welcome email could not be queued; the account exists regardless.
type RegistrationResult struct {
	User            *models.User
	QRCode          string
	NotificationErr error
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	hasher         *password.Hasher
	twoFactor      *totp.Engine
	tokenGenerator *service.TokenGenerator
	revoker        TokenRevoker
	notifier       notifications.Notifier
	loginRecorder  LoginRecorder
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new auth service.
// revoker, notifier and loginRecorder are optional and may be nil.
func NewAuthService(
	userRepo UserRepository,
	hasher *password.Hasher,
	twoFactor *totp.Engine,
	tokenGenerator *service.TokenGenerator,
	revoker TokenRevoker,
	notifier notifications.Notifier,
	loginRecorder LoginRecorder,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		twoFactor:      twoFactor,
		tokenGenerator: tokenGenerator,
		revoker:        revoker,
		notifier:       notifier,
		loginRecorder:  loginRecorder,
		logger:         logger,
		now:            time.Now,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register creates a new editor account with two-factor authentication enrolled
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*RegistrationResult, error) {
	user, err := normalizeRegistration(req)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, user.Username, user.Email); err != nil {
		return nil, err
	}

	user.PasswordHash, err = s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	enrollment, err := s.twoFactor.GenerateSecret(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate two-factor secret: %w", err)
	}
	user.TwoFactorSecret = enrollment.Secret

	// A concurrent registration can still win the race after the pre-check;
	// the unique index turns that into a DuplicateFieldError here.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	qrCode, err := totp.QRCode(enrollment.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}

	result := &RegistrationResult{User: user, QRCode: qrCode}

	if s.notifier != nil {
		msg := notifications.WelcomeMessage(user.FirstName, user.Username)
		if err := s.notifier.Send(ctx, user.Email, msg.Subject, msg.Body); err != nil {
			s.logger.Warn("failed to send welcome email", zap.Int("user_id", user.ID), zap.Error(err))
			result.NotificationErr = err
		}
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return result, nil
}

// Login authenticates a user and issues an access and refresh token pair
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error) {
	tokens, outcome, err := s.login(ctx, req)
	if s.loginRecorder != nil {
		s.loginRecorder.RecordLoginAttempt(outcome)
	}
	return tokens, err
}

func (s *authService) login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, middlewares.LoginOutcomeInvalidCredentials, apperrors.NewValidationError("username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, middlewares.LoginOutcomeInvalidCredentials, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, middlewares.LoginOutcomeError, err
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, middlewares.LoginOutcomeError, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, middlewares.LoginOutcomeInvalidCredentials, apperrors.ErrInvalidCredentials
	}

	if user.HasTwoFactor() {
		code := strings.TrimSpace(req.TwoFACode)
		if code == "" {
			return nil, middlewares.LoginOutcomeTwoFactorRequired, apperrors.ErrTwoFactorRequired
		}

		valid, err := s.twoFactor.Verify(user.TwoFactorSecret, code, s.now())
		if err != nil {
			s.logger.Error("stored two-factor secret is unusable", zap.Int("user_id", user.ID), zap.Error(err))
			return nil, middlewares.LoginOutcomeError, fmt.Errorf("failed to verify two-factor code: %w", err)
		}
		if !valid {
			return nil, middlewares.LoginOutcomeInvalidTwoFactor, apperrors.ErrInvalidTwoFactorCode
		}
	}

	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(user.ID)
	if err != nil {
		return nil, middlewares.LoginOutcomeError, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, middlewares.LoginOutcomeSuccess, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", apperrors.ErrMissingToken
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return "", fmt.Errorf("%w: token has been revoked", apperrors.ErrInvalidToken)
		}
	}

	if _, err := s.userRepo.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", fmt.Errorf("%w: token owner no longer exists", apperrors.ErrInvalidToken)
		}
		return "", err
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the access token the request was made with and, if given, the refresh token.
// An invalid refresh token is ignored since it can no longer be used anyway.
func (s *authService) Logout(ctx context.Context, accessTokenID string, accessExpiresAt time.Time, refreshToken string) error {
	if s.revoker == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, accessTokenID, accessExpiresAt.Sub(s.now())); err != nil {
		return err
	}

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("ignoring invalid refresh token on logout", zap.Error(err))
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, s.tokenGenerator.RemainingLifetime(claims))
}

// GetProfile returns the account of the authenticated user
func (s *authService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// checkUnique reports the first taken unique field, username before email
func (s *authService) checkUnique(ctx context.Context, username, email string) error {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return &apperrors.DuplicateFieldError{Field: "username"}
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return &apperrors.DuplicateFieldError{Field: "email"}
	}
	return nil
}

// normalizeRegistration trims the request and validates required fields
func normalizeRegistration(req *models.RegisterRequest) (*models.User, error) {
	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Role:      models.RoleEditor,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Age:       req.Age,
		Gender:    strings.TrimSpace(req.Gender),
	}

	required := []struct {
		field string
		value string
	}{
		{"username", user.Username},
		{"password", req.Password},
		{"firstName", user.FirstName},
		{"lastName", user.LastName},
		{"gender", user.Gender},
		{"email", user.Email},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperrors.NewValidationError("%s is required", r.field)
		}
	}

	if user.Age <= 0 {
		return nil, apperrors.NewValidationError("age must be a positive number")
	}
	if !emailRegex.MatchString(user.Email) {
		return nil, apperrors.NewValidationError("invalid email format")
	}

	return user, nil
}

package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/portfoliohub/backend/internal/apperrors"
)

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

// TokenType constants
const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the payload carried by both token types
type Claims struct {
	UserID int       `json:"user_id"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenGenerator handles JWT token generation and validation.
// Access and refresh tokens are signed with different secrets,
// so holding one kind never allows minting the other.
type TokenGenerator struct {
	accessSecret       []byte
	refreshSecret      []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	now                func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		accessSecret:       []byte(accessSecret),
		refreshSecret:      []byte(refreshSecret),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
		now:                time.Now,
	}
}

// WithClock replaces the clock used for issuing and validating tokens
func (tg *TokenGenerator) WithClock(now func() time.Time) *TokenGenerator {
	tg.now = now
	return tg
}

// GenerateTokens generates both access and refresh tokens for a user
func (tg *TokenGenerator) GenerateTokens(userID int) (string, string, error) {
	accessToken, err := tg.GenerateAccessToken(userID)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := tg.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken creates a short-lived access token bound to userID
func (tg *TokenGenerator) GenerateAccessToken(userID int) (string, error) {
	token, err := tg.sign(userID, TokenTypeAccess, tg.accessTokenExpiry, tg.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken creates a long-lived refresh token bound to userID
func (tg *TokenGenerator) GenerateRefreshToken(userID int) (string, error) {
	token, err := tg.sign(userID, TokenTypeRefresh, tg.refreshTokenExpiry, tg.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

func (tg *TokenGenerator) sign(userID int, tokenType TokenType, expiry time.Duration, secret []byte) (string, error) {
	now := tg.now()
	claims := Claims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims.
// Any failure is reported as apperrors.ErrInvalidToken.
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return tg.validate(tokenString, TokenTypeAccess, tg.accessSecret)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
// Any failure is reported as apperrors.ErrInvalidToken.
func (tg *TokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return tg.validate(tokenString, TokenTypeRefresh, tg.refreshSecret)
}

func (tg *TokenGenerator) validate(tokenString string, expected TokenType, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tg.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	if claims.Type != expected {
		return nil, fmt.Errorf("%w: unexpected token type %q", apperrors.ErrInvalidToken, claims.Type)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id not found in token", apperrors.ErrInvalidToken)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: token id not found", apperrors.ErrInvalidToken)
	}

	return claims, nil
}

// RemainingLifetime returns how long the token stays valid from now
func (tg *TokenGenerator) RemainingLifetime(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Sub(tg.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

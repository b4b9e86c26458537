package models

// RegisterRequest represents a registration request body
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Message string `json:"message"`
	QRCode  string `json:"qrCode"`
}

// LoginRequest represents a login request body
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	TwoFACode string `json:"twoFACode,omitempty"`
}

// TokenPair holds issued access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest represents a token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse holds a newly issued access token
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// LogoutRequest represents a logout request body; the refresh token is optional
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// MessageResponse is a generic acknowledgment body
type MessageResponse struct {
	Message string `json:"message"`
}

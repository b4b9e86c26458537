package models

import "time"

// Role is a user's permission level
type Role string

// Role constants
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// User represents a user in the system
type User struct {
	ID              int       `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Never serialize password hash
	TwoFactorSecret string    `json:"-"` // Never serialize TOTP secret
	Role            Role      `json:"role"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Age             int       `json:"age"`
	Gender          string    `json:"gender"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasTwoFactor reports whether a TOTP secret is enrolled for the user
func (u *User) HasTwoFactor() bool {
	return u.TwoFactorSecret != ""
}

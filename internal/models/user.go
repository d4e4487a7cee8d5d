package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account: credentials plus identity
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile holds display metadata and the role for a user. Every user
// accessed through the API has one; it is lazily created on first read.
type UserProfile struct {
	ID            int64     `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	Role          string    `json:"role" db:"role"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// UserView is the composed external representation of a user and their
// profile, shaped for the frontend
type UserView struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// ComposeUserView builds the external user representation from a user and
// their profile. Display name falls back to the username when unset.
func ComposeUserView(user *User, profile *UserProfile) UserView {
	displayName := profile.DisplayName
	if displayName == "" {
		displayName = user.Username
	}
	return UserView{
		ID:            user.ID.String(),
		Email:         user.Email,
		Username:      user.Username,
		DisplayName:   displayName,
		Role:          profile.Role,
		EmailVerified: profile.EmailVerified,
		CreatedAt:     profile.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     profile.UpdatedAt.Format(time.RFC3339),
	}
}

// IsAdmin reports whether the profile carries the admin role
func (p *UserProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

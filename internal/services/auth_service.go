package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shinasport/terminal-booking-backend/internal/database"
	"github.com/shinasport/terminal-booking-backend/internal/models"
)

// ErrInvalidCredentials is returned for every login failure. The message is
// deliberately identical for unknown users, wrong passwords and inactive
// accounts to avoid user enumeration.
var ErrInvalidCredentials = errors.New("invalid username or password")

// FieldErrors carries per-field validation messages
type FieldErrors map[string]string

// Error implements the error interface
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// UserStore is the slice of the user repository the auth service needs
type UserStore interface {
	CreateUserWithProfile(username, email, passwordHash, displayName string, emailVerified bool) (*models.User, *models.UserProfile, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetOrCreateProfile(userID uuid.UUID) (*models.UserProfile, error)
}

// AuthService handles registration and credential checks
type AuthService struct {
	users           UserStore
	bcryptCost      int
	autoVerifyEmail bool
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, bcryptCost int, autoVerifyEmail bool) *AuthService {
	return &AuthService{
		users:           users,
		bcryptCost:      bcryptCost,
		autoVerifyEmail: autoVerifyEmail,
	}
}

// Register creates a user and their profile. Duplicate email or username,
// compared case-insensitively, is rejected with a field-level error before
// anything is written.
func (s *AuthService) Register(username, email, password, displayName string) (*models.User, *models.UserProfile, error) {
	fieldErrs := FieldErrors{}

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		fieldErrs["email"] = "Email already registered"
	}

	existing, err = s.users.GetUserByUsername(username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		fieldErrs["username"] = "Username already taken"
	}

	if len(fieldErrs) > 0 {
		return nil, nil, fieldErrs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if displayName == "" {
		displayName = username
	}

	user, profile, err := s.users.CreateUserWithProfile(username, email, string(hash), displayName, s.autoVerifyEmail)
	if err != nil {
		// A concurrent registration can slip past the pre-checks and hit the
		// unique index; surface it the same way as a pre-checked duplicate.
		if database.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "email") {
				return nil, nil, FieldErrors{"email": "Email already registered"}
			}
			return nil, nil, FieldErrors{"username": "Username already taken"}
		}
		return nil, nil, err
	}

	return user, profile, nil
}

// Authenticate resolves the identifier to a user and verifies the password.
// Email-shaped identifiers are looked up by email first, then by username,
// so a valid email works in the username field regardless of the user's
// actual username. Exactly one password check is performed.
func (s *AuthService) Authenticate(identifier, password string) (*models.User, *models.UserProfile, error) {
	var user *models.User
	var err error

	if strings.Contains(identifier, "@") {
		user, err = s.users.GetUserByEmail(identifier)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}
	if user == nil {
		user, err = s.users.GetUserByUsername(identifier)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	profile, err := s.users.GetOrCreateProfile(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	return user, profile, nil
}

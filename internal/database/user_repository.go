package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shinasport/terminal-booking-backend/internal/models"
)

// UserRepository handles user and profile database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUserWithProfile creates a user and their profile atomically.
// Registration must never leave a user without a profile behind.
func (r *UserRepository) CreateUserWithProfile(username, email, passwordHash, displayName string, emailVerified bool) (*models.User, *models.UserProfile, error) {
	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &models.UserProfile{
		UserID:        user.ID,
		DisplayName:   displayName,
		Role:          models.RoleUser,
		EmailVerified: emailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, username, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(userQuery, user.ID, user.Username, user.Email, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	profileQuery := `
		INSERT INTO user_profiles (user_id, display_name, role, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRow(profileQuery, profile.UserID, profile.DisplayName, profile.Role, profile.EmailVerified, profile.CreatedAt, profile.UpdatedAt).Scan(&profile.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit user creation: %w", err)
	}

	return user, profile, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
// Returns (nil, nil) when no user matches.
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users WHERE LOWER(email) = LOWER($1)
	`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
// Returns (nil, nil) when no user matches.
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users WHERE LOWER(username) = LOWER($1)
	`

	err := r.db.Get(&user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by id. Returns (nil, nil) when no user matches.
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// GetOrCreateProfile returns the profile for a user, creating a default one
// on first read if it is missing
func (r *UserRepository) GetOrCreateProfile(userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	query := `
		SELECT id, user_id, display_name, role, email_verified, created_at, updated_at
		FROM user_profiles WHERE user_id = $1
	`

	err := r.db.Get(&profile, query, userID)
	if err == nil {
		return &profile, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	now := time.Now()
	profile = models.UserProfile{
		UserID:        userID,
		DisplayName:   "",
		Role:          models.RoleUser,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	insert := `
		INSERT INTO user_profiles (user_id, display_name, role, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := r.db.QueryRow(insert, profile.UserID, profile.DisplayName, profile.Role, profile.EmailVerified, profile.CreatedAt, profile.UpdatedAt).Scan(&profile.ID); err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	return &profile, nil
}

// ListUsers returns all users ordered by creation time, id breaking ties
func (r *UserRepository) ListUsers() ([]models.User, error) {
	users := []models.User{}
	query := `
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users ORDER BY created_at ASC, id ASC
	`

	if err := r.db.Select(&users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUsername changes a user's username
func (r *UserRepository) UpdateUsername(id uuid.UUID, username string) error {
	query := `UPDATE users SET username = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, username, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateDisplayName changes the display name on a user's profile
func (r *UserRepository) UpdateDisplayName(userID uuid.UUID, displayName string) error {
	query := `UPDATE user_profiles SET display_name = $1, updated_at = $2 WHERE user_id = $3`

	if _, err := r.db.Exec(query, displayName, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}

	return nil
}

// DeleteUser removes a user. The profile goes with it (FK cascade) and any
// bookings owned by the user are detached, not deleted (FK set null).
func (r *UserRepository) DeleteUser(id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenRepository stores hashed refresh tokens server-side so they can
// be revoked and audited
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		db: db,
	}
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// StoreRefreshToken stores a refresh token hash with client metadata
func (r *RefreshTokenRepository) StoreRefreshToken(
	userID uuid.UUID,
	token string,
	ipAddress, userAgent, deviceType string,
	expiresAt time.Time,
) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, ip_address, user_agent, device_type, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var ipVal, userAgentVal, deviceTypeVal interface{}
	if ipAddress != "" {
		ipVal = ipAddress
	}
	if userAgent != "" {
		userAgentVal = userAgent
	}
	if deviceType != "" {
		deviceTypeVal = deviceType
	}

	_, err := r.db.Exec(query, userID, hashToken(token), ipVal, userAgentVal, deviceTypeVal, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// IsRefreshTokenValid reports whether the token is known, unexpired and not
// revoked for the given user
func (r *RefreshTokenRepository) IsRefreshTokenValid(userID uuid.UUID, token string) (bool, error) {
	var valid bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM refresh_tokens
			WHERE user_id = $1 AND token_hash = $2
			  AND expires_at > NOW() AND revoked_at IS NULL
		)
	`

	if err := r.db.Get(&valid, query, userID, hashToken(token)); err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}

	return valid, nil
}

// RevokeRefreshToken marks a single refresh token as revoked
func (r *RefreshTokenRepository) RevokeRefreshToken(userID uuid.UUID, token string) error {
	query := `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL
	`

	result, err := r.db.Exec(query, userID, hashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revoke result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// RevokeAllForUser revokes every live refresh token for a user, used when an
// account is deleted or deactivated
func (r *RefreshTokenRepository) RevokeAllForUser(userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user: %w", err)
	}

	return nil
}

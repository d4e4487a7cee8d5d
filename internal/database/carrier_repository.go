package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shinasport/terminal-booking-backend/internal/models"
)

// CarrierRepository handles carrier lookup table operations
type CarrierRepository struct {
	db DB
}

// NewCarrierRepository creates a new carrier repository
func NewCarrierRepository(db DB) *CarrierRepository {
	return &CarrierRepository{
		db: db,
	}
}

// CreateCarrier inserts a new carrier row
func (r *CarrierRepository) CreateCarrier(code, name string) (*models.Carrier, error) {
	carrier := &models.Carrier{
		Code:      code,
		Name:      name,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO carriers (code, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRow(query, carrier.Code, carrier.Name, carrier.CreatedAt).Scan(&carrier.ID); err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("carrier code %s already exists: %w", code, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create carrier: %w", err)
	}

	return carrier, nil
}

// GetCarrierByID retrieves a carrier by id. Returns (nil, nil) when no
// carrier matches.
func (r *CarrierRepository) GetCarrierByID(id int64) (*models.Carrier, error) {
	var carrier models.Carrier
	query := `SELECT id, code, name, created_at FROM carriers WHERE id = $1`

	err := r.db.Get(&carrier, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get carrier: %w", err)
	}

	return &carrier, nil
}

// ListCarriers returns all carriers ordered by code
func (r *CarrierRepository) ListCarriers() ([]models.Carrier, error) {
	carriers := []models.Carrier{}
	query := `SELECT id, code, name, created_at FROM carriers ORDER BY code ASC`

	if err := r.db.Select(&carriers, query); err != nil {
		return nil, fmt.Errorf("failed to list carriers: %w", err)
	}

	return carriers, nil
}

// UpdateCarrier updates a carrier's code and name
func (r *CarrierRepository) UpdateCarrier(id int64, code, name string) error {
	query := `UPDATE carriers SET code = $1, name = $2 WHERE id = $3`

	result, err := r.db.Exec(query, code, name, id)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("carrier code %s already exists: %w", code, ErrDuplicate)
		}
		return fmt.Errorf("failed to update carrier: %w", err)
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

// DeleteCarrier removes a carrier row
func (r *CarrierRepository) DeleteCarrier(id int64) error {
	query := `DELETE FROM carriers WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete carrier: %w", err)
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

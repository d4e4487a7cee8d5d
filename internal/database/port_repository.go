package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shinasport/terminal-booking-backend/internal/models"
)

// PortRepository handles port lookup table operations
type PortRepository struct {
	db DB
}

// NewPortRepository creates a new port repository
func NewPortRepository(db DB) *PortRepository {
	return &PortRepository{
		db: db,
	}
}

// CreatePort inserts a new port row
func (r *PortRepository) CreatePort(code, name string) (*models.Port, error) {
	port := &models.Port{
		Code:      code,
		Name:      name,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO ports (code, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRow(query, port.Code, port.Name, port.CreatedAt).Scan(&port.ID); err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("port code %s already exists: %w", code, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create port: %w", err)
	}

	return port, nil
}

// GetPortByID retrieves a port by id. Returns (nil, nil) when no port matches.
func (r *PortRepository) GetPortByID(id int64) (*models.Port, error) {
	var port models.Port
	query := `SELECT id, code, name, created_at FROM ports WHERE id = $1`

	err := r.db.Get(&port, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get port: %w", err)
	}

	return &port, nil
}

// ListPorts returns all ports ordered by code
func (r *PortRepository) ListPorts() ([]models.Port, error) {
	ports := []models.Port{}
	query := `SELECT id, code, name, created_at FROM ports ORDER BY code ASC`

	if err := r.db.Select(&ports, query); err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}

	return ports, nil
}

// UpdatePort updates a port's code and name
func (r *PortRepository) UpdatePort(id int64, code, name string) error {
	query := `UPDATE ports SET code = $1, name = $2 WHERE id = $3`

	result, err := r.db.Exec(query, code, name, id)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("port code %s already exists: %w", code, ErrDuplicate)
		}
		return fmt.Errorf("failed to update port: %w", err)
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

// DeletePort removes a port row
func (r *PortRepository) DeletePort(id int64) error {
	query := `DELETE FROM ports WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete port: %w", err)
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

package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shinasport/terminal-booking-backend/internal/models"
)

// Result caps for list and search endpoints
const (
	ListBookingsLimit   = 100
	SearchBookingsLimit = 50
)

// bookingColumns is the canonical column list shared by all booking queries
const bookingColumns = `
	id, user_id, reference, created_at,
	has_passenger, has_baggage, has_vehicle,
	passenger_name, passenger_id_number, passport_number, phone_number,
	baggage_pieces, baggage_weight_kg, baggage_items, vehicle_items,
	vehicle_plate_number, vehicle_type, vehicle_length_m,
	origin_port, destination_port, departure_date, document_type,
	departure_gate, seat_number, seating_area, arrival_date,
	carrier_name, ticket_number, sequence_number, boarding_time
`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{
		db: db,
	}
}

// CreateBooking persists a booking and returns the stored form with the
// generated id and creation timestamp. A unique violation on reference is
// returned as-is so the caller can treat it as a retryable conflict.
func (r *BookingRepository) CreateBooking(b *models.Booking) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (
			user_id, reference,
			has_passenger, has_baggage, has_vehicle,
			passenger_name, passenger_id_number, passport_number, phone_number,
			baggage_pieces, baggage_weight_kg, baggage_items, vehicle_items,
			vehicle_plate_number, vehicle_type, vehicle_length_m,
			origin_port, destination_port, departure_date, document_type,
			departure_gate, seat_number, seating_area, arrival_date,
			carrier_name, ticket_number, sequence_number, boarding_time
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28
		)
		RETURNING id, created_at
	`

	row := r.db.QueryRow(
		query,
		b.UserID,
		b.Reference,
		b.HasPassenger,
		b.HasBaggage,
		b.HasVehicle,
		b.PassengerName,
		b.PassengerIDNumber,
		b.PassportNumber,
		b.PhoneNumber,
		b.BaggagePieces,
		b.BaggageWeightKg,
		b.BaggageItems,
		b.VehicleItems,
		b.VehiclePlateNumber,
		b.VehicleType,
		b.VehicleLengthM,
		b.OriginPort,
		b.DestinationPort,
		b.DepartureDate,
		b.DocumentType,
		b.DepartureGate,
		b.SeatNumber,
		b.SeatingArea,
		b.ArrivalDate,
		b.CarrierName,
		b.TicketNumber,
		b.SequenceNumber,
		b.BoardingTime,
	)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("reference %s already exists: %w", b.Reference, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return b, nil
}

// GetBookingByReference retrieves a booking by its reference.
// Returns (nil, nil) when no booking matches.
func (r *BookingRepository) GetBookingByReference(reference string) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`

	err := r.db.Get(&booking, query, reference)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}

	return &booking, nil
}

// ReferenceExists reports whether a booking with the reference already exists
func (r *BookingRepository) ReferenceExists(reference string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE reference = $1)`

	if err := r.db.Get(&exists, query, reference); err != nil {
		return false, fmt.Errorf("failed to check reference existence: %w", err)
	}

	return exists, nil
}

// ListBookings returns the newest bookings first, capped at limit
// (ListBookingsLimit when limit is not positive)
func (r *BookingRepository) ListBookings(limit int) ([]models.Booking, error) {
	if limit <= 0 || limit > ListBookingsLimit {
		limit = ListBookingsLimit
	}

	bookings := []models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT $1`

	if err := r.db.Select(&bookings, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// BookingFilters holds the optional substring filters for SearchBookings.
// Filters that are set are ANDed together.
type BookingFilters struct {
	Reference string
	Passport  string
	IDNumber  string
}

// Empty reports whether no filter is set
func (f BookingFilters) Empty() bool {
	return f.Reference == "" && f.Passport == "" && f.IDNumber == ""
}

// SearchBookings returns bookings matching every given filter as a
// case-insensitive substring, newest first, capped at SearchBookingsLimit
func (r *BookingRepository) SearchBookings(filters BookingFilters) ([]models.Booking, error) {
	conditions := []string{}
	args := []interface{}{}

	if filters.Reference != "" {
		args = append(args, "%"+filters.Reference+"%")
		conditions = append(conditions, fmt.Sprintf("reference ILIKE $%d", len(args)))
	}
	if filters.Passport != "" {
		args = append(args, "%"+filters.Passport+"%")
		conditions = append(conditions, fmt.Sprintf("passport_number ILIKE $%d", len(args)))
	}
	if filters.IDNumber != "" {
		args = append(args, "%"+filters.IDNumber+"%")
		conditions = append(conditions, fmt.Sprintf("passenger_id_number ILIKE $%d", len(args)))
	}

	if len(conditions) == 0 {
		return nil, fmt.Errorf("at least one search filter is required")
	}

	args = append(args, SearchBookingsLimit)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` +
		strings.Join(conditions, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}

	return bookings, nil
}

package services

import (
	"errors"
	"fmt"

	"github.com/shinasport/terminal-booking-backend/internal/database"
	"github.com/shinasport/terminal-booking-backend/internal/models"
	"github.com/shinasport/terminal-booking-backend/pkg/reference"
)

// ErrReferenceConflict indicates the supplied booking reference is already
// taken
var ErrReferenceConflict = errors.New("booking reference already in use")

// insertRetries bounds how often a create is retried with a fresh reference
// when the check-then-insert race loses to a concurrent writer
const insertRetries = 3

// BookingStore is the slice of the booking repository the service needs
type BookingStore interface {
	CreateBooking(b *models.Booking) (*models.Booking, error)
	ReferenceExists(ref string) (bool, error)
}

// BookingService creates bookings, assigning a unique reference when the
// client did not supply one
type BookingService struct {
	store BookingStore
}

// NewBookingService creates a new booking service
func NewBookingService(store BookingStore) *BookingService {
	return &BookingService{
		store: store,
	}
}

// Create persists a booking. Without a supplied reference one is generated
// and checked against the store; the uniqueness check and the insert are not
// atomic, so a duplicate-key failure at insert time is retried with a fresh
// reference. A duplicate on a client-supplied reference is a conflict, not a
// retry.
func (s *BookingService) Create(b *models.Booking) (*models.Booking, error) {
	clientSupplied := b.Reference != ""

	for attempt := 0; ; attempt++ {
		if !clientSupplied && b.Reference == "" {
			ref, err := reference.EnsureUnique(s.store.ReferenceExists)
			if err != nil {
				return nil, fmt.Errorf("failed to assign booking reference: %w", err)
			}
			b.Reference = ref
		}

		stored, err := s.store.CreateBooking(b)
		if err == nil {
			return stored, nil
		}

		if !errors.Is(err, database.ErrDuplicate) {
			return nil, err
		}
		if clientSupplied {
			return nil, ErrReferenceConflict
		}
		if attempt >= insertRetries {
			return nil, fmt.Errorf("reference collisions on every attempt: %w", err)
		}
		b.Reference = ""
	}
}

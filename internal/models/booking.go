package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document types for the printed receipt
const (
	DocumentPassengerTicket   = "PASSENGER_TICKET"
	DocumentCargoBoardingCard = "CARGO_BOARDING_CARD"
)

// Booking represents a booking record: passenger and/or baggage and/or
// vehicle, from one port to another. The reference is assigned once at
// creation and never changes.
type Booking struct {
	ID        int64         `json:"id" db:"id"`
	UserID    uuid.NullUUID `json:"user_id,omitempty" db:"user_id"`
	Reference string        `json:"reference" db:"reference"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`

	HasPassenger bool `json:"has_passenger" db:"has_passenger"`
	HasBaggage   bool `json:"has_baggage" db:"has_baggage"`
	HasVehicle   bool `json:"has_vehicle" db:"has_vehicle"`

	PassengerName     string `json:"passenger_name" db:"passenger_name"`
	PassengerIDNumber string `json:"passenger_id_number" db:"passenger_id_number"`
	PassportNumber    string `json:"passport_number" db:"passport_number"`
	PhoneNumber       string `json:"phone_number" db:"phone_number"`

	BaggagePieces   NullInt64   `json:"baggage_pieces" db:"baggage_pieces"`
	BaggageWeightKg NullFloat64 `json:"baggage_weight_kg" db:"baggage_weight_kg"`
	BaggageItems    ItemList    `json:"baggage_items" db:"baggage_items"`
	VehicleItems    ItemList    `json:"vehicle_items" db:"vehicle_items"`

	VehiclePlateNumber string      `json:"vehicle_plate_number" db:"vehicle_plate_number"`
	VehicleType        string      `json:"vehicle_type" db:"vehicle_type"`
	VehicleLengthM     NullFloat64 `json:"vehicle_length_m" db:"vehicle_length_m"`

	OriginPort      string    `json:"origin_port" db:"origin_port"`
	DestinationPort string    `json:"destination_port" db:"destination_port"`
	DepartureDate   time.Time `json:"departure_date" db:"departure_date"`

	DocumentType string `json:"document_type" db:"document_type"`

	DepartureGate  string `json:"departure_gate" db:"departure_gate"`
	SeatNumber     string `json:"seat_number" db:"seat_number"`
	SeatingArea    string `json:"seating_area" db:"seating_area"`
	ArrivalDate    string `json:"arrival_date" db:"arrival_date"`
	CarrierName    string `json:"carrier_name" db:"carrier_name"`
	TicketNumber   string `json:"ticket_number" db:"ticket_number"`
	SequenceNumber string `json:"sequence_number" db:"sequence_number"`
	BoardingTime   string `json:"boarding_time" db:"boarding_time"`
}

// BookingView is the external camelCase representation of a booking, shaped
// for the frontend: optional text fields that are empty internally are
// presented as null, list fields always materialize as [].
type BookingView struct {
	Reference string `json:"reference"`
	CreatedAt string `json:"createdAt"`

	HasPassenger bool `json:"hasPassenger"`
	HasBaggage   bool `json:"hasBaggage"`
	HasVehicle   bool `json:"hasVehicle"`

	PassengerName     *string `json:"passengerName"`
	PassengerIDNumber *string `json:"passengerIdNumber"`
	PassportNumber    *string `json:"passportNumber"`
	PhoneNumber       *string `json:"phoneNumber"`

	BaggagePieces   *int64   `json:"baggagePieces"`
	BaggageWeightKg *float64 `json:"baggageWeightKg"`
	BaggageItems    ItemList `json:"baggageItems"`
	VehicleItems    ItemList `json:"vehicleItems"`

	VehiclePlateNumber *string  `json:"vehiclePlateNumber"`
	VehicleType        *string  `json:"vehicleType"`
	VehicleLengthM     *float64 `json:"vehicleLengthM"`

	OriginPort      string `json:"originPort"`
	DestinationPort string `json:"destinationPort"`
	DepartureDate   string `json:"departureDate"`

	DocumentType string `json:"documentType"`

	DepartureGate  *string `json:"departureGate"`
	SeatNumber     *string `json:"seatNumber"`
	SeatingArea    *string `json:"seatingArea"`
	ArrivalDate    *string `json:"arrivalDate"`
	CarrierName    *string `json:"carrierName"`
	TicketNumber   *string `json:"ticketNumber"`
	SequenceNumber *string `json:"sequenceNumber"`
	BoardingTime   *string `json:"boardingTime"`
}

// View maps the stored booking to its external camelCase representation
func (b *Booking) View() BookingView {
	createdAt := ""
	if !b.CreatedAt.IsZero() {
		createdAt = b.CreatedAt.Format(time.RFC3339)
	}
	departure := ""
	if !b.DepartureDate.IsZero() {
		departure = b.DepartureDate.Format(time.RFC3339)
	}

	return BookingView{
		Reference:          b.Reference,
		CreatedAt:          createdAt,
		HasPassenger:       b.HasPassenger,
		HasBaggage:         b.HasBaggage,
		HasVehicle:         b.HasVehicle,
		PassengerName:      textOrNil(b.PassengerName),
		PassengerIDNumber:  textOrNil(b.PassengerIDNumber),
		PassportNumber:     textOrNil(b.PassportNumber),
		PhoneNumber:        textOrNil(b.PhoneNumber),
		BaggagePieces:      nullInt(b.BaggagePieces),
		BaggageWeightKg:    nullFloat(b.BaggageWeightKg),
		BaggageItems:       b.BaggageItems.OrEmpty(),
		VehicleItems:       b.VehicleItems.OrEmpty(),
		VehiclePlateNumber: textOrNil(b.VehiclePlateNumber),
		VehicleType:        textOrNil(b.VehicleType),
		VehicleLengthM:     nullFloat(b.VehicleLengthM),
		OriginPort:         b.OriginPort,
		DestinationPort:    b.DestinationPort,
		DepartureDate:      departure,
		DocumentType:       b.DocumentType,
		DepartureGate:      textOrNil(b.DepartureGate),
		SeatNumber:         textOrNil(b.SeatNumber),
		SeatingArea:        textOrNil(b.SeatingArea),
		ArrivalDate:        textOrNil(b.ArrivalDate),
		CarrierName:        textOrNil(b.CarrierName),
		TicketNumber:       textOrNil(b.TicketNumber),
		SequenceNumber:     textOrNil(b.SequenceNumber),
		BoardingTime:       textOrNil(b.BoardingTime),
	}
}

// BookingInput is the inbound camelCase payload for creating a booking.
// Required fields are enforced with binding tags; everything else is
// optional and defaulted by ToBooking.
type BookingInput struct {
	Reference string `json:"reference"`

	OriginPort      string `json:"originPort" binding:"required"`
	DestinationPort string `json:"destinationPort" binding:"required"`
	DepartureDate   string `json:"departureDate" binding:"required"`

	HasPassenger bool `json:"hasPassenger"`
	HasBaggage   bool `json:"hasBaggage"`
	HasVehicle   bool `json:"hasVehicle"`

	PassengerName     string `json:"passengerName"`
	PassengerIDNumber string `json:"passengerIdNumber"`
	PassportNumber    string `json:"passportNumber"`
	PhoneNumber       string `json:"phoneNumber"`

	BaggagePieces   *int64   `json:"baggagePieces"`
	BaggageWeightKg *float64 `json:"baggageWeightKg"`
	BaggageItems    ItemList `json:"baggageItems"`
	VehicleItems    ItemList `json:"vehicleItems"`

	VehiclePlateNumber string   `json:"vehiclePlateNumber"`
	VehicleType        string   `json:"vehicleType"`
	VehicleLengthM     *float64 `json:"vehicleLengthM"`

	DocumentType string `json:"documentType" binding:"omitempty,oneof=PASSENGER_TICKET CARGO_BOARDING_CARD"`

	DepartureGate  string `json:"departureGate"`
	SeatNumber     string `json:"seatNumber"`
	SeatingArea    string `json:"seatingArea"`
	ArrivalDate    string `json:"arrivalDate"`
	CarrierName    string `json:"carrierName"`
	TicketNumber   string `json:"ticketNumber"`
	SequenceNumber string `json:"sequenceNumber"`
	BoardingTime   string `json:"boardingTime"`
}

// departureDateLayouts lists the ISO-like formats the frontend may send,
// tried in order. Layouts without a zone are interpreted in the server's
// local zone.
var departureDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDepartureDate normalizes an ISO-like departure date string to an
// aware timestamp
func ParseDepartureDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range departureDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time format: %q", value)
}

// ToBooking maps the inbound payload to its internal snake_case form:
// text fields are trimmed (blank-after-trim stays empty string), optional
// numerics stay NULL when absent, lists default to empty.
func (in *BookingInput) ToBooking() (*Booking, error) {
	departure, err := ParseDepartureDate(in.DepartureDate)
	if err != nil {
		return nil, err
	}

	documentType := in.DocumentType
	if documentType == "" {
		documentType = DocumentCargoBoardingCard
	}

	return &Booking{
		Reference:          strings.TrimSpace(in.Reference),
		HasPassenger:       in.HasPassenger,
		HasBaggage:         in.HasBaggage,
		HasVehicle:         in.HasVehicle,
		PassengerName:      strings.TrimSpace(in.PassengerName),
		PassengerIDNumber:  strings.TrimSpace(in.PassengerIDNumber),
		PassportNumber:     strings.TrimSpace(in.PassportNumber),
		PhoneNumber:        strings.TrimSpace(in.PhoneNumber),
		BaggagePieces:      intFromPtr(in.BaggagePieces),
		BaggageWeightKg:    floatFromPtr(in.BaggageWeightKg),
		BaggageItems:       in.BaggageItems.OrEmpty(),
		VehicleItems:       in.VehicleItems.OrEmpty(),
		VehiclePlateNumber: strings.TrimSpace(in.VehiclePlateNumber),
		VehicleType:        strings.TrimSpace(in.VehicleType),
		VehicleLengthM:     floatFromPtr(in.VehicleLengthM),
		OriginPort:         strings.TrimSpace(in.OriginPort),
		DestinationPort:    strings.TrimSpace(in.DestinationPort),
		DepartureDate:      departure,
		DocumentType:       documentType,
		DepartureGate:      strings.TrimSpace(in.DepartureGate),
		SeatNumber:         strings.TrimSpace(in.SeatNumber),
		SeatingArea:        strings.TrimSpace(in.SeatingArea),
		ArrivalDate:        strings.TrimSpace(in.ArrivalDate),
		CarrierName:        strings.TrimSpace(in.CarrierName),
		TicketNumber:       strings.TrimSpace(in.TicketNumber),
		SequenceNumber:     strings.TrimSpace(in.SequenceNumber),
		BoardingTime:       strings.TrimSpace(in.BoardingTime),
	}, nil
}

// textOrNil presents internal empty strings as null externally. This
// asymmetry is part of the frontend contract.
func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(n NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullFloat(n NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intFromPtr(p *int64) NullInt64 {
	var n NullInt64
	if p != nil {
		n.Valid = true
		n.Int64 = *p
	}
	return n
}

func floatFromPtr(p *float64) NullFloat64 {
	var n NullFloat64
	if p != nil {
		n.Valid = true
		n.Float64 = *p
	}
	return n
}

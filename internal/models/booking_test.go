package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBooking_Defaults(t *testing.T) {
	in := BookingInput{
		OriginPort:      " BND ",
		DestinationPort: "QSM",
		DepartureDate:   "2025-03-01T08:00:00",
		HasPassenger:    true,
		PassengerName:   "  A. Rezaei  ",
	}

	b, err := in.ToBooking()
	require.NoError(t, err)

	assert.Equal(t, "BND", b.OriginPort)
	assert.Equal(t, "QSM", b.DestinationPort)
	assert.Equal(t, "A. Rezaei", b.PassengerName)
	assert.True(t, b.HasPassenger)
	assert.False(t, b.HasBaggage)
	assert.Equal(t, DocumentCargoBoardingCard, b.DocumentType)
	assert.Equal(t, "", b.PassengerIDNumber)
	assert.False(t, b.BaggagePieces.Valid)
	assert.False(t, b.BaggageWeightKg.Valid)
	assert.NotNil(t, b.BaggageItems)
	assert.Len(t, b.BaggageItems, 0)

	// Zoneless input is annotated with the local zone
	want := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	assert.True(t, b.DepartureDate.Equal(want))
}

func TestToBooking_InvalidDate(t *testing.T) {
	in := BookingInput{
		OriginPort:      "BND",
		DestinationPort: "QSM",
		DepartureDate:   "first of never",
	}

	_, err := in.ToBooking()
	assert.Error(t, err)
}

func TestToBooking_CombinedFlags(t *testing.T) {
	pieces := int64(3)
	weight := 41.5
	in := BookingInput{
		OriginPort:      "BND",
		DestinationPort: "QSM",
		DepartureDate:   "2025-03-01T08:00:00+04:00",
		HasPassenger:    true,
		HasBaggage:      true,
		PassengerName:   "A. Rezaei",
		BaggagePieces:   &pieces,
		BaggageWeightKg: &weight,
		BaggageItems:    ItemList{{"kind": "box", "count": float64(3)}},
	}

	b, err := in.ToBooking()
	require.NoError(t, err)

	// Flags are independent, not mutually exclusive
	assert.True(t, b.HasPassenger)
	assert.True(t, b.HasBaggage)
	assert.False(t, b.HasVehicle)
	assert.Equal(t, "A. Rezaei", b.PassengerName)
	assert.Equal(t, int64(3), b.BaggagePieces.Int64)
	assert.Equal(t, 41.5, b.BaggageWeightKg.Float64)
	assert.Len(t, b.BaggageItems, 1)
}

func TestView_EmptyTextBecomesNull(t *testing.T) {
	b := Booking{
		Reference:       "SC-195D9A2B3C-7K",
		CreatedAt:       time.Date(2025, 2, 20, 10, 30, 0, 0, time.UTC),
		OriginPort:      "BND",
		DestinationPort: "QSM",
		DepartureDate:   time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		DocumentType:    DocumentCargoBoardingCard,
		HasPassenger:    true,
		PassengerName:   "A. Rezaei",
	}

	view := b.View()

	assert.Equal(t, "SC-195D9A2B3C-7K", view.Reference)
	require.NotNil(t, view.PassengerName)
	assert.Equal(t, "A. Rezaei", *view.PassengerName)
	// Internal empty string is presented as null externally
	assert.Nil(t, view.PassengerIDNumber)
	assert.Nil(t, view.PhoneNumber)
	assert.Nil(t, view.BaggagePieces)
	// Lists materialize as [], never null
	assert.NotNil(t, view.BaggageItems)
	assert.NotNil(t, view.VehicleItems)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"passengerIdNumber":null`)
	assert.Contains(t, string(data), `"baggageItems":[]`)
	assert.Contains(t, string(data), `"documentType":"CARGO_BOARDING_CARD"`)
}

func TestRoundTrip_PreservesValues(t *testing.T) {
	weight := 120.25
	in := BookingInput{
		Reference:       "SC-195D9A2B3C-7K",
		OriginPort:      "BND",
		DestinationPort: "QSM",
		DepartureDate:   "2025-03-01T08:00:00+04:00",
		HasVehicle:      true,
		VehicleType:     "truck",
		VehicleLengthM:  &weight,
		VehicleItems:    ItemList{{"plate": "AB-123"}},
	}

	b, err := in.ToBooking()
	require.NoError(t, err)
	view := b.View()

	// Feed the outbound view back through the inbound mapper
	back := BookingInput{
		Reference:       view.Reference,
		OriginPort:      view.OriginPort,
		DestinationPort: view.DestinationPort,
		DepartureDate:   view.DepartureDate,
		HasPassenger:    view.HasPassenger,
		HasBaggage:      view.HasBaggage,
		HasVehicle:      view.HasVehicle,
		VehicleType:     strOrEmpty(view.VehicleType),
		VehicleLengthM:  view.VehicleLengthM,
		VehicleItems:    view.VehicleItems,
		DocumentType:    view.DocumentType,
	}
	b2, err := back.ToBooking()
	require.NoError(t, err)

	assert.Equal(t, b.Reference, b2.Reference)
	assert.Equal(t, b.VehicleType, b2.VehicleType)
	assert.Equal(t, b.VehicleLengthM, b2.VehicleLengthM)
	assert.True(t, b.DepartureDate.Equal(b2.DepartureDate))
	assert.Equal(t, b.VehicleItems, b2.VehicleItems)
	// Fields that were empty internally stayed empty after the round trip
	assert.Equal(t, "", b2.PassengerName)
}

func TestParseDepartureDate_Layouts(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"RFC3339", "2025-03-01T08:00:00+04:00"},
		{"Zoneless", "2025-03-01T08:00:00"},
		{"SpaceSeparated", "2025-03-01 08:00:00"},
		{"MinutePrecision", "2025-03-01T08:00"},
		{"MinutePrecisionSpace", "2025-03-01 08:00"},
		{"DateOnly", "2025-03-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseDepartureDate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, 2025, parsed.Year())
			assert.Equal(t, time.March, parsed.Month())
			assert.NotNil(t, parsed.Location())
		})
	}
}

func TestComposeUserView_DisplayNameFallback(t *testing.T) {
	user := &User{Username: "clerk1", Email: "clerk1@example.com"}
	profile := &UserProfile{Role: RoleUser, EmailVerified: true}

	view := ComposeUserView(user, profile)
	assert.Equal(t, "clerk1", view.DisplayName)
	assert.Equal(t, RoleUser, view.Role)

	profile.DisplayName = "Terminal Clerk"
	view = ComposeUserView(user, profile)
	assert.Equal(t, "Terminal Clerk", view.DisplayName)
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shinasport/terminal-booking-backend/internal/database"
	"github.com/shinasport/terminal-booking-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingTestColumns = []string{
	"id", "user_id", "reference", "created_at",
	"has_passenger", "has_baggage", "has_vehicle",
	"passenger_name", "passenger_id_number", "passport_number", "phone_number",
	"baggage_pieces", "baggage_weight_kg", "baggage_items", "vehicle_items",
	"vehicle_plate_number", "vehicle_type", "vehicle_length_m",
	"origin_port", "destination_port", "departure_date", "document_type",
	"departure_gate", "seat_number", "seating_area", "arrival_date",
	"carrier_name", "ticket_number", "sequence_number", "boarding_time",
}

func bookingTestRow(id int64, reference string, createdAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(bookingTestColumns).AddRow(
		id, nil, reference, createdAt,
		true, false, false,
		"A. Rezaei", "1234567890", "", "",
		nil, nil, []byte(`[]`), []byte(`[]`),
		"", "", nil,
		"BND", "QSM", createdAt.Add(24*time.Hour), "CARGO_BOARDING_CARD",
		"", "", "", "",
		"", "", "", "",
	)
}

func setupBookingRouter(t *testing.T, receiptsEnabled bool) (*gin.Engine, sqlmock.Sqlmock) {
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := database.NewBookingRepository(db)
	handler := NewBookingHandler(
		repo,
		services.NewBookingService(repo),
		services.NewReceiptService(receiptsEnabled, "Shinas Port International Terminal"),
	)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/bookings", handler.List)
	api.POST("/bookings", handler.Create)
	api.GET("/bookings/search", handler.Search)
	api.GET("/bookings/:reference", handler.GetByReference)
	api.GET("/bookings/:reference/receipt/pdf", handler.ReceiptPDF)

	return router, mock
}

func TestBookingHandler_List(t *testing.T) {
	router, mock := setupBookingRouter(t, true)

	t.Run("Returns CamelCase Views", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings ORDER BY created_at DESC LIMIT`).
			WithArgs(database.ListBookingsLimit).
			WillReturnRows(bookingTestRow(7, "SC-195D9A2B3C-7K", time.Now()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"SC-195D9A2B3C-7K"`)
		assert.Contains(t, w.Body.String(), `"passengerName":"A. Rezaei"`)
		assert.Contains(t, w.Body.String(), `"baggageItems":[]`)
		assert.Contains(t, w.Body.String(), `"passportNumber":null`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty List Is Not Null", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings ORDER BY created_at DESC LIMIT`).
			WithArgs(database.ListBookingsLimit).
			WillReturnRows(sqlmock.NewRows(bookingTestColumns))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingHandler_Create(t *testing.T) {
	router, mock := setupBookingRouter(t, true)

	t.Run("Supplied Reference", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))

		body := `{"reference":"SC-195D9A2B3C-7K","originPort":"BND","destinationPort":"QSM","departureDate":"2026-09-15"}`
		req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"SC-195D9A2B3C-7K"`)
		assert.Contains(t, w.Body.String(), `"documentType":"CARGO_BOARDING_CARD"`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Generated Reference", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), time.Now()))

		body := `{"originPort":"BND","destinationPort":"QSM","departureDate":"2026-09-15T08:30:00Z"}`
		req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"SC-`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Required Fields", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader(`{"originPort":"BND"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"validation_error"`)
		assert.Contains(t, w.Body.String(), `"destinationPort"`)
		assert.Contains(t, w.Body.String(), `"departureDate"`)
		assert.NotContains(t, w.Body.String(), `"originPort"`)
	})

	t.Run("Invalid Departure Date", func(t *testing.T) {
		body := `{"originPort":"BND","destinationPort":"QSM","departureDate":"next tuesday"}`
		req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"departureDate"`)
	})

	t.Run("Invalid Document Type", func(t *testing.T) {
		body := `{"originPort":"BND","destinationPort":"QSM","departureDate":"2026-09-15","documentType":"FREIGHT_NOTE"}`
		req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"documentType"`)
	})

	t.Run("Duplicate Supplied Reference", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf(`duplicate key value violates unique constraint "bookings_reference_key"`))

		body := `{"reference":"SC-195D9A2B3C-7K","originPort":"BND","destinationPort":"QSM","departureDate":"2026-09-15"}`
		req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"Booking reference already exists"`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingHandler_GetByReference(t *testing.T) {
	router, mock := setupBookingRouter(t, true)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("SC-195D9A2B3C-7K").
			WillReturnRows(bookingTestRow(7, "SC-195D9A2B3C-7K", time.Now()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/SC-195D9A2B3C-7K", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"SC-195D9A2B3C-7K"`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("NOPE").
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/NOPE", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"booking not found"}`, w.Body.String())

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingHandler_Search(t *testing.T) {
	router, mock := setupBookingRouter(t, true)

	t.Run("No Filters", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/search", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"validation_error"`)
	})

	t.Run("Reference Filter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference ILIKE`).
			WithArgs("%195D%", database.SearchBookingsLimit).
			WillReturnRows(bookingTestRow(7, "SC-195D9A2B3C-7K", time.Now()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/search?reference=195D", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"SC-195D9A2B3C-7K"`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingHandler_ReceiptPDF(t *testing.T) {
	t.Run("Renders Attachment", func(t *testing.T) {
		router, mock := setupBookingRouter(t, true)

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("SC-195D9A2B3C-7K").
			WillReturnRows(bookingTestRow(7, "SC-195D9A2B3C-7K", time.Now()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/SC-195D9A2B3C-7K/receipt/pdf", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-SC-195D9A2B3C-7K.pdf")
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Disabled", func(t *testing.T) {
		router, mock := setupBookingRouter(t, false)

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("SC-195D9A2B3C-7K").
			WillReturnRows(bookingTestRow(7, "SC-195D9A2B3C-7K", time.Now()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/SC-195D9A2B3C-7K/receipt/pdf", nil))

		assert.Equal(t, http.StatusNotImplemented, w.Code)
		assert.Contains(t, w.Body.String(), "not enabled")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Reference", func(t *testing.T) {
		router, mock := setupBookingRouter(t, true)

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("NOPE").
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/NOPE/receipt/pdf", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

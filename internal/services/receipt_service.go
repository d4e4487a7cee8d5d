package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/shinasport/terminal-booking-backend/internal/models"
)

// ReceiptService renders booking registration receipts as PDF documents
type ReceiptService struct {
	enabled      bool
	terminalName string
}

// NewReceiptService creates a new receipt service
func NewReceiptService(enabled bool, terminalName string) *ReceiptService {
	return &ReceiptService{
		enabled:      enabled,
		terminalName: terminalName,
	}
}

// Enabled reports whether PDF rendering is configured
func (s *ReceiptService) Enabled() bool {
	return s.enabled
}

// Render produces the receipt PDF and its download filename
func (s *ReceiptService) Render(b *models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Registration Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("%s - Registration Receipt", s.terminalName))
	pdf.Ln(14)

	created := "-"
	if !b.CreatedAt.IsZero() {
		created = b.CreatedAt.Format("2006-01-02 15:04")
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Tracking Number (PNR): %s", b.Reference),
		fmt.Sprintf("Date: %s", created),
		fmt.Sprintf("Passenger: %s", orDash(b.PassengerName)),
		fmt.Sprintf("Route: %s -> %s", b.OriginPort, b.DestinationPort),
		fmt.Sprintf("Departure: %s", b.DepartureDate.Format("2006-01-02 15:04")),
		fmt.Sprintf("Cargo: %d pcs / %.2f kg", b.BaggagePieces.Int64, b.BaggageWeightKg.Float64),
		fmt.Sprintf("Document: %s", b.DocumentType),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render receipt: %w", err)
	}

	filename := fmt.Sprintf("receipt-%s.pdf", b.Reference)
	return buf.Bytes(), filename, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

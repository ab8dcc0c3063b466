package journal

import (
	"context"
	"fmt"
	"os"

	"bookingproxy/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAppender appends journal rows to a Google spreadsheet.
type SheetsAppender struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsAppender authenticates with a service-account credentials file.
func NewSheetsAppender(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsAppender, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsAppender{service: srv, spreadsheetID: spreadsheetID}, nil
}

// Append adds one row to the journal sheet.
func (s *SheetsAppender) Append(ctx context.Context, entry models.JournalEntry) error {
	row := []interface{}{
		entry.Time.Format("2006-01-02 15:04:05"),
		entry.State,
		entry.Method,
		entry.PaymentID,
		entry.ReservationID,
		entry.ApartmentID,
		entry.ArrivalDate,
		entry.DepartureDate,
		fmt.Sprintf("%d.%02d", entry.AmountMinor/100, entry.AmountMinor%100),
		entry.Currency,
		entry.Detail,
	}

	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, "Journal!A1", valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append journal row: %w", err)
	}
	return nil
}

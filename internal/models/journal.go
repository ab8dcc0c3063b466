package models

import "time"

// JournalEntry is one append-only reconciliation row. Partial-failure rows
// are the ones manual recovery works from: the payment is captured but no
// reservation exists.
type JournalEntry struct {
	Time          time.Time
	State         string
	PaymentID     string
	Method        string
	ReservationID string
	ApartmentID   string
	ArrivalDate   string
	DepartureDate string
	AmountMinor   int64
	Currency      string
	Detail        string
}

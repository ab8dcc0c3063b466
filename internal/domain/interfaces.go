package domain

import (
	"context"

	"bookingproxy/internal/models"
)

// PricingSource recomputes the authoritative price for a stay. A client
// supplied amount is never trusted without going through this.
type PricingSource interface {
	Quote(ctx context.Context, apartmentID, arrival, departure string, adults, children int) (*models.PriceQuote, error)
}

// ReservationCreator creates the reservation upstream as the terminal effect
// of a verified booking.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, req *models.BookingRequest) (string, error)
}

// PropertyGateway relays browser requests to the property-management API
// with server-held credentials injected.
type PropertyGateway interface {
	UserRaw(ctx context.Context) (*models.RawResponse, error)
	ApartmentsRaw(ctx context.Context) (*models.RawResponse, error)
	AvailabilityRaw(ctx context.Context, body []byte) (*models.RawResponse, error)
	ReservationRaw(ctx context.Context, body []byte) (*models.RawResponse, error)
}

// CardProcessor tracks single charge attempts via payment intents.
type CardProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
}

// WalletProcessor handles redirect-based orders: create, then capture after
// buyer approval.
type WalletProcessor interface {
	CreateOrder(ctx context.Context, amount int64, currency, customID, returnURL, cancelURL string) (*models.WalletOrder, error)
	CaptureOrder(ctx context.Context, id string) (*models.WalletCapture, error)
}

// EventPublisher notifies in-process subscribers of booking events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Journal records booking outcomes out of band for manual reconciliation.
// Record must never block the request path.
type Journal interface {
	Record(entry models.JournalEntry)
}

package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookingproxy/internal/domain"
	"bookingproxy/internal/events"
	"bookingproxy/internal/logging"
	"bookingproxy/internal/metrics"
	"bookingproxy/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrMissingPayment      = errors.New("missing paymentId or method")
	ErrUnknownMethod       = errors.New("unknown payment method")
	ErrNotConfigured       = errors.New("payment provider is not configured")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrPriceMismatch       = errors.New("recomputed price does not match the paid amount")
	ErrInvalidPrice        = errors.New("invalid total price")
	ErrBadMetadata         = errors.New("payment metadata does not contain a valid booking")
)

// ReservationError marks the partial-failure state: the payment is captured
// but the reservation could not be created. The payment id travels with it
// so the caller can surface it for manual reconciliation.
type ReservationError struct {
	PaymentID string
	Err       error
}

func (e *ReservationError) Error() string {
	return fmt.Sprintf("payment %s captured but reservation failed: %v", e.PaymentID, e.Err)
}

func (e *ReservationError) Unwrap() error { return e.Err }

// Deps wires the orchestrator to its upstreams. Card and Wallet may be nil
// when the respective provider is not configured.
type Deps struct {
	Pricing      domain.PricingSource
	Reservations domain.ReservationCreator
	Card         domain.CardProcessor
	Wallet       domain.WalletProcessor
	Events       domain.EventPublisher
	Journal      domain.Journal
	Logger       *zerolog.Logger
	Currency     string
	AppURL       string
}

// Service sequences payment verification, price reconciliation and
// reservation creation. It holds no state between requests.
type Service struct {
	pricing      domain.PricingSource
	reservations domain.ReservationCreator
	card         domain.CardProcessor
	wallet       domain.WalletProcessor
	events       domain.EventPublisher
	journal      domain.Journal
	logger       *zerolog.Logger
	currency     string
	appURL       string
}

func NewService(deps Deps) *Service {
	currency := deps.Currency
	if currency == "" {
		currency = "EUR"
	}
	if deps.Events == nil {
		deps.Events = events.NewEventBus()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return &Service{
		pricing:      deps.Pricing,
		reservations: deps.Reservations,
		card:         deps.Card,
		wallet:       deps.Wallet,
		events:       deps.Events,
		journal:      deps.Journal,
		logger:       deps.Logger,
		currency:     currency,
		appURL:       deps.AppURL,
	}
}

// Initiate recomputes the price server-side, stamps it into the booking
// metadata and creates the payment object with the selected provider.
func (s *Service) Initiate(ctx context.Context, method string, req *models.BookingRequest) (*models.InitiateResult, error) {
	if method != models.MethodStripe && method != models.MethodPayPal {
		return nil, ErrUnknownMethod
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount, currency, err := s.quoteMinor(ctx, req)
	if err != nil {
		return nil, err
	}
	req.AmountMinor = amount
	req.Currency = currency

	var result *models.InitiateResult
	switch method {
	case models.MethodStripe:
		result, err = s.initiateCard(ctx, req)
	case models.MethodPayPal:
		result, err = s.initiateWallet(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("method", method).
		Str("payment_id", result.PaymentID).
		Str("apartment_id", req.ApartmentID).
		Int64("amount_minor", amount).
		Msg("payment initiated")

	_ = s.events.PublishJSON(events.EventPaymentInitiated, events.BookingEventPayload{
		State:         "initiated",
		Method:        method,
		PaymentID:     result.PaymentID,
		ApartmentID:   req.ApartmentID,
		ArrivalDate:   req.ArrivalDate,
		DepartureDate: req.DepartureDate,
		AmountMinor:   amount,
		Currency:      currency,
		GuestName:     req.FirstName + " " + req.LastName,
	})

	return result, nil
}

func (s *Service) initiateCard(ctx context.Context, req *models.BookingRequest) (*models.InitiateResult, error) {
	if s.card == nil {
		return nil, fmt.Errorf("%w: stripe", ErrNotConfigured)
	}

	intent, err := s.card.CreateIntent(ctx, req.AmountMinor, req.Currency, req.ToMetadata())
	if err != nil {
		metrics.IncUpstream("stripe", "error")
		return nil, err
	}
	metrics.IncUpstream("stripe", "ok")

	return &models.InitiateResult{
		Provider:     models.MethodStripe,
		PaymentID:    intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (s *Service) initiateWallet(ctx context.Context, req *models.BookingRequest) (*models.InitiateResult, error) {
	if s.wallet == nil {
		return nil, fmt.Errorf("%w: paypal", ErrNotConfigured)
	}

	customID, err := json.Marshal(req.ToMetadata())
	if err != nil {
		return nil, err
	}

	order, err := s.wallet.CreateOrder(ctx, req.AmountMinor, req.Currency, string(customID),
		s.appURL+"/paypal-success", s.appURL+"/booking-cancel")
	if err != nil {
		metrics.IncUpstream("paypal", "error")
		return nil, err
	}
	metrics.IncUpstream("paypal", "ok")

	return &models.InitiateResult{
		Provider:    models.MethodPayPal,
		PaymentID:   order.ID,
		ApprovalURL: order.ApprovalURL,
	}, nil
}

// Finalize runs the linear verification sequence: confirm the capture with
// the payment processor, recompute the price and compare, then create the
// reservation. There are no retries; a reservation failure after capture is
// surfaced as a ReservationError, never swallowed.
func (s *Service) Finalize(ctx context.Context, paymentID, method string) (*models.FinalizeResult, error) {
	if paymentID == "" || method == "" {
		return nil, ErrMissingPayment
	}

	var (
		meta           map[string]string
		declaredAmount int64
	)

	switch method {
	case models.MethodStripe:
		if s.card == nil {
			return nil, fmt.Errorf("%w: stripe", ErrNotConfigured)
		}
		intent, err := s.card.GetIntent(ctx, paymentID)
		if err != nil {
			metrics.IncUpstream("stripe", "error")
			return nil, err
		}
		metrics.IncUpstream("stripe", "ok")
		if intent.Status != models.StripeStatusSucceeded {
			return nil, fmt.Errorf("%w: status %q", ErrPaymentNotCompleted, intent.Status)
		}
		meta = intent.Metadata
		declaredAmount = intent.Amount

	case models.MethodPayPal:
		if s.wallet == nil {
			return nil, fmt.Errorf("%w: paypal", ErrNotConfigured)
		}
		capture, err := s.wallet.CaptureOrder(ctx, paymentID)
		if err != nil {
			metrics.IncUpstream("paypal", "error")
			return nil, err
		}
		metrics.IncUpstream("paypal", "ok")
		if capture.Status != models.PayPalStatusCompleted {
			return nil, fmt.Errorf("%w: status %q", ErrPaymentNotCompleted, capture.Status)
		}
		if err := json.Unmarshal([]byte(capture.CustomID), &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
		}

	default:
		return nil, ErrUnknownMethod
	}

	req, err := models.FromMetadata(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	if declaredAmount == 0 {
		declaredAmount = req.AmountMinor
	}

	recomputed, _, err := s.quoteMinor(ctx, req)
	if err != nil {
		return nil, err
	}
	if recomputed != declaredAmount {
		s.logger.Warn().
			Str("payment_id", paymentID).
			Int64("declared_minor", declaredAmount).
			Int64("recomputed_minor", recomputed).
			Msg("price mismatch, rejecting booking")
		metrics.IncBooking(models.StateRejected)
		return nil, ErrPriceMismatch
	}

	reservationID, err := s.reservations.CreateReservation(ctx, req)
	if err != nil {
		metrics.IncUpstream("smoobu", "error")
		metrics.IncBooking(models.StatePartialFailure)
		s.logger.Error().Err(err).
			Str("payment_id", paymentID).
			Msg("payment captured but reservation failed")

		resErr := &ReservationError{PaymentID: paymentID, Err: err}
		s.record(models.StatePartialFailure, method, paymentID, "", req, err.Error())
		return &models.FinalizeResult{State: models.StatePartialFailure, PaymentID: paymentID}, resErr
	}
	metrics.IncUpstream("smoobu", "ok")
	metrics.IncBooking(models.StateSuccess)

	s.logger.Info().
		Str("payment_id", paymentID).
		Str("reservation_id", reservationID).
		Msg("booking confirmed")

	s.record(models.StateSuccess, method, paymentID, reservationID, req, "")

	return &models.FinalizeResult{
		State:         models.StateSuccess,
		ReservationID: reservationID,
		PaymentID:     paymentID,
	}, nil
}

// quoteMinor fetches the authoritative quote and converts it to minor units.
func (s *Service) quoteMinor(ctx context.Context, req *models.BookingRequest) (int64, string, error) {
	quote, err := s.pricing.Quote(ctx, req.ApartmentID, req.ArrivalDate, req.DepartureDate, req.Adults, req.Children)
	if err != nil {
		metrics.IncUpstream("smoobu", "error")
		return 0, "", err
	}
	metrics.IncUpstream("smoobu", "ok")

	amount := MinorUnits(quote.Total)
	if amount <= 0 {
		return 0, "", ErrInvalidPrice
	}

	currency := quote.Currency
	if currency == "" {
		currency = s.currency
	}
	return amount, currency, nil
}

// record publishes the terminal event and appends a reconciliation row.
func (s *Service) record(state, method, paymentID, reservationID string, req *models.BookingRequest, detail string) {
	eventType := events.EventBookingConfirmed
	if state == models.StatePartialFailure {
		eventType = events.EventBookingPartialFailure
	}

	_ = s.events.PublishJSON(eventType, events.BookingEventPayload{
		State:         state,
		Method:        method,
		PaymentID:     paymentID,
		ReservationID: reservationID,
		ApartmentID:   req.ApartmentID,
		ArrivalDate:   req.ArrivalDate,
		DepartureDate: req.DepartureDate,
		AmountMinor:   req.AmountMinor,
		Currency:      req.Currency,
		GuestName:     req.FirstName + " " + req.LastName,
		Detail:        detail,
	})

	if s.journal != nil {
		s.journal.Record(models.JournalEntry{
			Time:          time.Now(),
			State:         state,
			PaymentID:     paymentID,
			Method:        method,
			ReservationID: reservationID,
			ApartmentID:   req.ApartmentID,
			ArrivalDate:   req.ArrivalDate,
			DepartureDate: req.DepartureDate,
			AmountMinor:   req.AmountMinor,
			Currency:      req.Currency,
			Detail:        detail,
		})
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bookingproxy/internal/booking"
	"bookingproxy/internal/config"
	"bookingproxy/internal/domain"
	"bookingproxy/internal/models"
	"bookingproxy/internal/smoobu"

	"github.com/rs/zerolog"
)

// Orchestrator is the payment-verification-and-booking sequence the server
// dispatches to.
type Orchestrator interface {
	Initiate(ctx context.Context, method string, req *models.BookingRequest) (*models.InitiateResult, error)
	Finalize(ctx context.Context, paymentID, method string) (*models.FinalizeResult, error)
}

// Server exposes the browser-facing JSON API.
type Server struct {
	cfg      *config.Config
	property domain.PropertyGateway
	bookings Orchestrator
	logger   *zerolog.Logger
	limiter  *rateLimiter
	server   *http.Server
}

func NewServer(cfg *config.Config, property domain.PropertyGateway, bookings Orchestrator, logger *zerolog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		property: property,
		bookings: bookings,
		logger:   logger,
		limiter:  newRateLimiter(cfg.HTTP.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleNotFound)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/user", srv.handleUser)
	mux.HandleFunc("/apartments", srv.handleApartments)
	mux.HandleFunc("/check-availability", srv.handleCheckAvailability)
	mux.HandleFunc("/initiate-payment", srv.handleInitiatePayment)
	mux.HandleFunc("/paypal-success", srv.handlePayPalSuccess)
	mux.HandleFunc("/finalize-booking", srv.handleFinalizeBooking)
	mux.HandleFunc("/reservations", srv.handleReservations)

	handler := srv.requestIDMiddleware(
		srv.corsMiddleware(
			srv.rateLimitMiddleware(
				srv.loggingMiddleware(mux))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler exposes the middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.relay(w, r, func(ctx context.Context) (*models.RawResponse, error) {
		return s.property.UserRaw(ctx)
	})
}

func (s *Server) handleApartments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.relay(w, r, func(ctx context.Context) (*models.RawResponse, error) {
		return s.property.ApartmentsRaw(ctx)
	})
}

func (s *Server) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	s.relay(w, r, func(ctx context.Context) (*models.RawResponse, error) {
		return s.property.AvailabilityRaw(ctx, body)
	})
}

func (s *Server) handleReservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	s.relay(w, r, func(ctx context.Context) (*models.RawResponse, error) {
		return s.property.ReservationRaw(ctx, body)
	})
}

// relay forwards an upstream response unchanged; only transport failures
// are wrapped into a local envelope.
func (s *Server) relay(w http.ResponseWriter, r *http.Request, call func(ctx context.Context) (*models.RawResponse, error)) {
	resp, err := call(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream call failed")
		s.writeFailure(w, http.StatusInternalServerError, "upstream request failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

type initiateRequest struct {
	Method string `json:"method"`
	models.BookingRequest
}

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.bookings.Initiate(r.Context(), req.Method, &req.BookingRequest)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type finalizeRequest struct {
	PaymentID string `json:"paymentId"`
	Method    string `json:"method"`
}

func (s *Server) handleFinalizeBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.bookings.Finalize(r.Context(), req.PaymentID, req.Method)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"reservationId": result.ReservationID,
	})
}

func (s *Server) handlePayPalSuccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	paymentID := r.URL.Query().Get("token")
	if paymentID == "" {
		writeError(w, http.StatusBadRequest, "missing payment token")
		return
	}

	result, err := s.bookings.Finalize(r.Context(), paymentID, models.MethodPayPal)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_id", paymentID).Msg("paypal finalize failed")
		errorURL := fmt.Sprintf("%s/booking-error?error=%s", s.cfg.AppURL, url.QueryEscape(err.Error()))
		http.Redirect(w, r, errorURL, http.StatusFound)
		return
	}

	successURL := fmt.Sprintf("%s/booking-success?reservationId=%s", s.cfg.AppURL, url.QueryEscape(result.ReservationID))
	http.Redirect(w, r, successURL, http.StatusFound)
}

// writeBookingError maps orchestrator errors onto the error taxonomy:
// client/validation and business rejections are 400, configuration and
// transport problems 500, and the captured-payment-without-reservation case
// gets its own envelope so it can be reconciled manually.
func (s *Server) writeBookingError(w http.ResponseWriter, err error) {
	var resErr *booking.ReservationError
	if errors.As(err, &resErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success":      false,
			"error":        "payment captured but reservation creation failed",
			"bookingError": resErr.Err.Error(),
			"paymentId":    resErr.PaymentID,
		})
		return
	}

	var shapeErr *smoobu.UnrecognizedShapeError
	if errors.As(err, &shapeErr) {
		s.writeFailure(w, http.StatusInternalServerError, "upstream pricing payload not understood", err)
		return
	}

	switch {
	case errors.Is(err, booking.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, booking.ErrMissingPayment),
		errors.Is(err, booking.ErrUnknownMethod),
		errors.Is(err, booking.ErrPaymentNotCompleted),
		errors.Is(err, booking.ErrPriceMismatch),
		errors.Is(err, booking.ErrInvalidPrice),
		errors.Is(err, booking.ErrBadMetadata),
		errors.Is(err, models.ErrMissingFields),
		errors.Is(err, models.ErrInvalidDates),
		errors.Is(err, models.ErrInvalidGuests),
		errors.Is(err, models.ErrInvalidContact),
		errors.Is(err, smoobu.ErrNotAvailable):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeFailure(w, http.StatusInternalServerError, "internal error", err)
	}
}

// writeFailure hides internal detail in production.
func (s *Server) writeFailure(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"success": false, "error": message}
	if !s.cfg.IsProduction() && err != nil {
		body["details"] = err.Error()
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"success": false, "error": message})
}

package smoobu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookingproxy/internal/models"
)

// Client calls the Smoobu property-management REST API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// ErrNotAvailable is returned when the requested apartment is not bookable
// for the requested period.
var ErrNotAvailable = errors.New("apartment not available for the requested period")

// UnrecognizedShapeError reports an availability payload that did not match
// the expected pricing schema. The raw body is kept for diagnostics instead
// of guessing at alternative field names.
type UnrecognizedShapeError struct {
	Raw []byte
}

func (e *UnrecognizedShapeError) Error() string {
	return "unrecognized availability payload shape"
}

// NewClient constructs a client with the server-held API token.
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// availabilityRequest is the typed payload for the pricing lookup.
type availabilityRequest struct {
	ArrivalDate   string   `json:"arrivalDate"`
	DepartureDate string   `json:"departureDate"`
	Apartments    []string `json:"apartments"`
	Adults        int      `json:"adults"`
	Children      int      `json:"children"`
}

// availabilityResponse is the single schema contract for prices. Payloads
// that do not match produce an UnrecognizedShapeError, never a fallback.
type availabilityResponse struct {
	AvailableApartments []json.Number `json:"availableApartments"`
	Prices              map[string]struct {
		Price    *float64 `json:"price"`
		Currency string   `json:"currency"`
	} `json:"prices"`
}

// Quote recomputes the authoritative total for one apartment and stay.
func (c *Client) Quote(ctx context.Context, apartmentID, arrival, departure string, adults, children int) (*models.PriceQuote, error) {
	payload := availabilityRequest{
		ArrivalDate:   arrival,
		DepartureDate: departure,
		Apartments:    []string{apartmentID},
		Adults:        adults,
		Children:      children,
	}

	raw, status, err := c.doJSON(ctx, http.MethodPost, "/api/availability", payload, map[string]string{
		"Api-Key": c.apiToken,
	})
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("availability: http %d", status)
	}

	var resp availabilityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &UnrecognizedShapeError{Raw: raw}
	}

	available := false
	for _, id := range resp.AvailableApartments {
		if id.String() == apartmentID {
			available = true
			break
		}
	}
	if !available {
		return nil, ErrNotAvailable
	}

	entry, ok := resp.Prices[apartmentID]
	if !ok || entry.Price == nil {
		return nil, &UnrecognizedShapeError{Raw: raw}
	}

	return &models.PriceQuote{Total: *entry.Price, Currency: entry.Currency}, nil
}

// reservationPayload matches the reservation-creation contract.
type reservationPayload struct {
	ApartmentID string `json:"apartmentId"`
	Channel     string `json:"channel"`
	ChannelID   string `json:"channelId,omitempty"`
	Status      string `json:"status"`
	Checkin     string `json:"checkin"`
	Checkout    string `json:"checkout"`
	Price       string `json:"price"`
	Guests      struct {
		Adults   int `json:"adults"`
		Children int `json:"children"`
	} `json:"guests"`
	Customer struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"customer"`
}

// CreateReservation creates the reservation upstream. A 2xx response without
// a reservation id is treated as a failure.
func (c *Client) CreateReservation(ctx context.Context, req *models.BookingRequest) (string, error) {
	payload := reservationPayload{
		ApartmentID: req.ApartmentID,
		Channel:     models.ChannelWebsite,
		ChannelID:   req.ChannelID,
		Status:      models.ReservationStatusNew,
		Checkin:     req.ArrivalDate,
		Checkout:    req.DepartureDate,
		Price:       fmt.Sprintf("%d.%02d", req.AmountMinor/100, req.AmountMinor%100),
	}
	payload.Guests.Adults = req.Adults
	payload.Guests.Children = req.Children
	payload.Customer.FirstName = req.FirstName
	payload.Customer.LastName = req.LastName
	payload.Customer.Email = req.Email
	payload.Customer.Phone = req.Phone

	raw, status, err := c.doJSON(ctx, http.MethodPost, "/api/reservations", payload, map[string]string{
		"Api-Key":       c.apiToken,
		"Authorization": "Bearer " + c.apiToken,
	})
	if err != nil {
		return "", err
	}
	if status >= 300 {
		return "", fmt.Errorf("reservation: http %d: %s", status, string(raw))
	}

	var resp struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("reservation: decode response: %w", err)
	}
	if resp.ID.String() == "" || resp.ID.String() == "0" {
		return "", errors.New("reservation: upstream response has no reservation id")
	}

	return resp.ID.String(), nil
}

// UserRaw proxies the account lookup.
func (c *Client) UserRaw(ctx context.Context) (*models.RawResponse, error) {
	return c.relay(ctx, http.MethodGet, "/api/user", nil, map[string]string{
		"Authorization": "Bearer " + c.apiToken,
	})
}

// ApartmentsRaw proxies the apartment listing.
func (c *Client) ApartmentsRaw(ctx context.Context) (*models.RawResponse, error) {
	return c.relay(ctx, http.MethodGet, "/api/apartments", nil, map[string]string{
		"Api-Key": c.apiToken,
	})
}

// AvailabilityRaw relays an availability check, body and status untouched.
func (c *Client) AvailabilityRaw(ctx context.Context, body []byte) (*models.RawResponse, error) {
	return c.relay(ctx, http.MethodPost, "/api/availability", body, map[string]string{
		"Api-Key": c.apiToken,
	})
}

// ReservationRaw relays a direct reservation creation.
func (c *Client) ReservationRaw(ctx context.Context, body []byte) (*models.RawResponse, error) {
	return c.relay(ctx, http.MethodPost, "/api/reservations", body, map[string]string{
		"Api-Key": c.apiToken,
	})
}

// relay forwards a request and hands the upstream status and body back.
// Non-JSON upstream bodies are wrapped so the caller always emits JSON.
func (c *Client) relay(ctx context.Context, method, path string, body []byte, headers map[string]string) (*models.RawResponse, error) {
	raw, status, err := c.doRaw(ctx, method, path, body, headers)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		wrapped, merr := json.Marshal(map[string]string{"raw": string(raw)})
		if merr != nil {
			return nil, merr
		}
		raw = wrapped
	}
	return &models.RawResponse{Status: status, Body: raw}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, headers map[string]string) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	return c.doRaw(ctx, method, path, data, headers)
}

func (c *Client) doRaw(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return raw, resp.StatusCode, nil
}

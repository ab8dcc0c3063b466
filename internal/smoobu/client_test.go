package smoobu

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookingproxy/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestQuoteReturnsPriceForAvailableApartment(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/availability", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Api-Key"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2024-06-01", req["arrivalDate"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"availableApartments": [123],
			"prices": {"123": {"price": 200.0, "currency": "EUR"}}
		}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	quote, err := client.Quote(context.Background(), "123", "2024-06-01", "2024-06-03", 2, 0)

	assert.NoError(t, err)
	assert.Equal(t, 200.0, quote.Total)
	assert.Equal(t, "EUR", quote.Currency)
}

func TestQuoteNotAvailable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"availableApartments": [], "prices": {}}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	_, err := client.Quote(context.Background(), "123", "2024-06-01", "2024-06-03", 2, 0)

	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestQuoteUnrecognizedShape(t *testing.T) {
	cases := map[string]string{
		"not json":        `<html>maintenance</html>`,
		"missing price":   `{"availableApartments": [123], "prices": {"123": {"currency": "EUR"}}}`,
		"no price record": `{"availableApartments": [123], "prices": {}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer upstream.Close()

			client := NewClient(upstream.URL, "secret")
			_, err := client.Quote(context.Background(), "123", "2024-06-01", "2024-06-03", 2, 0)

			var shapeErr *UnrecognizedShapeError
			assert.ErrorAs(t, err, &shapeErr)
			assert.NotEmpty(t, shapeErr.Raw)
		})
	}
}

func TestQuoteUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"bad token"}`, http.StatusUnauthorized)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	_, err := client.Quote(context.Background(), "123", "2024-06-01", "2024-06-03", 2, 0)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAvailable)
}

func TestCreateReservationSendsBothAuthHeaders(t *testing.T) {
	var captured reservationPayload
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reservations", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Api-Key"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"id": 4567}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	id, err := client.CreateReservation(context.Background(), &models.BookingRequest{
		ApartmentID:   "123",
		ArrivalDate:   "2024-06-01",
		DepartureDate: "2024-06-03",
		Adults:        2,
		Children:      1,
		FirstName:     "Anna",
		LastName:      "Schmidt",
		Email:         "anna@example.com",
		Phone:         "+4917612345678",
		AmountMinor:   20050,
		Currency:      "EUR",
	})

	assert.NoError(t, err)
	assert.Equal(t, "4567", id)
	assert.Equal(t, "website", captured.Channel)
	assert.Equal(t, "NEW", captured.Status)
	assert.Equal(t, "200.50", captured.Price)
	assert.Equal(t, 2, captured.Guests.Adults)
	assert.Equal(t, "anna@example.com", captured.Customer.Email)
}

func TestCreateReservationRejectsMissingID(t *testing.T) {
	for name, body := range map[string]string{
		"empty object": `{}`,
		"zero id":      `{"id": 0}`,
	} {
		t.Run(name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer upstream.Close()

			client := NewClient(upstream.URL, "secret")
			_, err := client.CreateReservation(context.Background(), &models.BookingRequest{AmountMinor: 100})

			assert.Error(t, err)
		})
	}
}

func TestCreateReservationUpstreamFailureKeepsBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"dates overlap"}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	_, err := client.CreateReservation(context.Background(), &models.BookingRequest{AmountMinor: 100})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dates overlap")
}

func TestRelayPreservesStatusAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"firstName":"Max"}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	resp, err := client.UserRaw(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.JSONEq(t, `{"firstName":"Max"}`, string(resp.Body))
}

func TestRelayWrapsNonJSONBodies(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	resp, err := client.ApartmentsRaw(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.JSONEq(t, `{"raw":"upstream down"}`, string(resp.Body))
}

func TestAvailabilityRawForwardsBodyVerbatim(t *testing.T) {
	payload := `{"arrivalDate":"2024-06-01","departureDate":"2024-06-03","apartments":["123"]}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, string(raw))
		_, _ = w.Write([]byte(`{"availableApartments":[123]}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "secret")
	resp, err := client.AvailabilityRaw(context.Background(), []byte(payload))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestTransportErrorSurfaces(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "secret")
	_, err := client.UserRaw(context.Background())

	assert.Error(t, err)
	var shapeErr *UnrecognizedShapeError
	assert.False(t, errors.As(err, &shapeErr))
}

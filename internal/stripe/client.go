package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookingproxy/internal/models"
)

const defaultBaseURL = "https://api.stripe.com"

// Client calls the card processor's payment-intent REST API. The upstream
// speaks form-encoded requests and JSON responses.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient constructs a client with the server-held secret key.
func NewClient(secretKey string) *Client {
	return NewClientWithBaseURL(defaultBaseURL, secretKey)
}

// NewClientWithBaseURL allows pointing at a mock upstream in tests.
func NewClientWithBaseURL(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type intentResponse struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Metadata     map[string]string `json:"metadata"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent creates a payment intent with the booking metadata attached.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", strings.ToLower(currency))
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	return c.do(ctx, http.MethodPost, "/v1/payment_intents", form)
}

// GetIntent retrieves a payment intent by id.
func (c *Client) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	return c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*models.PaymentIntent, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded intentResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("payment intent: decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return nil, fmt.Errorf("payment intent: %s", decoded.Error.Message)
		}
		return nil, fmt.Errorf("payment intent: http %d", resp.StatusCode)
	}

	return &models.PaymentIntent{
		ID:           decoded.ID,
		ClientSecret: decoded.ClientSecret,
		Status:       decoded.Status,
		Amount:       decoded.Amount,
		Metadata:     decoded.Metadata,
	}, nil
}

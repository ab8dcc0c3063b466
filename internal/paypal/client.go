package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bookingproxy/internal/config"
	"bookingproxy/internal/models"
)

const (
	sandboxBaseURL    = "https://api.sandbox.paypal.com"
	productionBaseURL = "https://api.paypal.com"
)

// Client calls the wallet processor's checkout-order REST API using Basic
// auth with the server-held client id and secret.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// NewClient selects the sandbox or production API base by environment.
func NewClient(clientID, secret, environment string) *Client {
	baseURL := sandboxBaseURL
	if environment == config.EnvProduction {
		baseURL = productionBaseURL
	}
	return NewClientWithBaseURL(baseURL, clientID, secret)
}

// NewClientWithBaseURL allows pointing at a mock upstream in tests.
func NewClientWithBaseURL(baseURL, clientID, secret string) *Client {
	creds := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + secret))
	return &Client{
		baseURL:    baseURL,
		authHeader: "Basic " + creds,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount   orderAmount `json:"amount"`
	CustomID string      `json:"custom_id"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type orderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
	PurchaseUnits []struct {
		CustomID string `json:"custom_id"`
		Payments struct {
			Captures []struct {
				CustomID string `json:"custom_id"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Message string `json:"message"`
}

// CreateOrder creates a CAPTURE-intent order. The metadata blob travels in
// custom_id across the approval redirect.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, customID, returnURL, cancelURL string) (*models.WalletOrder, error) {
	payload := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount: orderAmount{
				CurrencyCode: currency,
				Value:        fmt.Sprintf("%d.%02d", amount/100, amount%100),
			},
			CustomID: customID,
		}},
		ApplicationContext: applicationContext{
			ReturnURL: returnURL,
			CancelURL: cancelURL,
		},
	}

	decoded, err := c.do(ctx, "/v2/checkout/orders", payload)
	if err != nil {
		return nil, err
	}

	approvalURL := ""
	for _, link := range decoded.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}
	if approvalURL == "" {
		return nil, errors.New("order: missing approval link")
	}

	return &models.WalletOrder{ID: decoded.ID, ApprovalURL: approvalURL}, nil
}

// CaptureOrder settles an approved order and returns its status together
// with the custom_id blob.
func (c *Client) CaptureOrder(ctx context.Context, id string) (*models.WalletCapture, error) {
	decoded, err := c.do(ctx, "/v2/checkout/orders/"+url.PathEscape(id)+"/capture", nil)
	if err != nil {
		return nil, err
	}

	customID := ""
	if len(decoded.PurchaseUnits) > 0 {
		pu := decoded.PurchaseUnits[0]
		customID = pu.CustomID
		if customID == "" && len(pu.Payments.Captures) > 0 {
			customID = pu.Payments.Captures[0].CustomID
		}
	}

	return &models.WalletCapture{Status: decoded.Status, CustomID: customID}, nil
}

func (c *Client) do(ctx context.Context, path string, payload any) (*orderResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded orderResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("order: decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		if decoded.Message != "" {
			return nil, fmt.Errorf("order: %s", decoded.Message)
		}
		return nil, fmt.Errorf("order: http %d", resp.StatusCode)
	}

	return &decoded, nil
}

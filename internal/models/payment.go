package models

// PriceQuote is the authoritative total computed from the upstream pricing
// source for one apartment and date range.
type PriceQuote struct {
	Total    float64
	Currency string
}

// PaymentIntent mirrors the card processor's charge-tracking object.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Metadata     map[string]string
}

// WalletOrder is a created wallet-processor order awaiting buyer approval.
type WalletOrder struct {
	ID          string
	ApprovalURL string
}

// WalletCapture is the result of capturing an approved wallet order.
// CustomID carries the metadata blob stamped in at order creation.
type WalletCapture struct {
	Status   string
	CustomID string
}

// InitiateResult is returned to the browser after a payment object exists.
type InitiateResult struct {
	Provider     string `json:"provider"`
	PaymentID    string `json:"paymentId"`
	ClientSecret string `json:"clientSecret,omitempty"`
	ApprovalURL  string `json:"approvalUrl,omitempty"`
}

// FinalizeResult is the terminal outcome of a finalize attempt.
type FinalizeResult struct {
	State         string
	ReservationID string
	PaymentID     string
}

// RawResponse relays an upstream status code and JSON body unchanged.
type RawResponse struct {
	Status int
	Body   []byte
}

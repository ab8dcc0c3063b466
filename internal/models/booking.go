package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// BookingRequest carries the booking fields submitted at payment initiation.
// It is embedded into the payment processor's metadata and reconstructed at
// confirmation time; it is never persisted locally.
type BookingRequest struct {
	ApartmentID   string `json:"apartmentId"`
	ArrivalDate   string `json:"arrivalDate"`
	DepartureDate string `json:"departureDate"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ChannelID     string `json:"channelId,omitempty"`

	// AmountMinor is the server-computed total in minor currency units,
	// stamped in before the payment object is created.
	AmountMinor int64  `json:"amountMinor"`
	Currency    string `json:"currency"`
}

var (
	ErrMissingFields  = errors.New("missing required booking fields")
	ErrInvalidDates   = errors.New("invalid arrival or departure date")
	ErrInvalidGuests  = errors.New("at least one adult guest is required")
	ErrInvalidContact = errors.New("incomplete contact information")
)

// Validate checks the core booking fields required before any upstream call.
func (b *BookingRequest) Validate() error {
	if b.ApartmentID == "" || b.ArrivalDate == "" || b.DepartureDate == "" {
		return ErrMissingFields
	}

	arrival, err := time.Parse(DateFormat, b.ArrivalDate)
	if err != nil {
		return ErrInvalidDates
	}
	departure, err := time.Parse(DateFormat, b.DepartureDate)
	if err != nil {
		return ErrInvalidDates
	}
	if !departure.After(arrival) {
		return ErrInvalidDates
	}

	if b.Adults < 1 {
		return ErrInvalidGuests
	}
	if b.Children < 0 {
		return ErrInvalidGuests
	}

	if b.FirstName == "" || b.LastName == "" || b.Email == "" || b.Phone == "" {
		return ErrInvalidContact
	}

	return nil
}

// Nights returns the number of nights between arrival and departure.
// Validate must have passed.
func (b *BookingRequest) Nights() int {
	arrival, _ := time.Parse(DateFormat, b.ArrivalDate)
	departure, _ := time.Parse(DateFormat, b.DepartureDate)
	return int(departure.Sub(arrival).Hours() / 24)
}

// ToMetadata flattens the request into the string map carried on the
// payment processor object across the redirect boundary.
func (b *BookingRequest) ToMetadata() map[string]string {
	m := map[string]string{
		"apartmentId":   b.ApartmentID,
		"arrivalDate":   b.ArrivalDate,
		"departureDate": b.DepartureDate,
		"adults":        strconv.Itoa(b.Adults),
		"children":      strconv.Itoa(b.Children),
		"firstName":     b.FirstName,
		"lastName":      b.LastName,
		"email":         b.Email,
		"phone":         b.Phone,
		"amountMinor":   strconv.FormatInt(b.AmountMinor, 10),
		"currency":      b.Currency,
	}
	if b.ChannelID != "" {
		m["channelId"] = b.ChannelID
	}
	return m
}

// FromMetadata rebuilds a BookingRequest from a payment processor metadata
// map. Numeric fields that fail to parse are reported, not defaulted.
func FromMetadata(m map[string]string) (*BookingRequest, error) {
	adults, err := strconv.Atoi(m["adults"])
	if err != nil {
		return nil, fmt.Errorf("metadata adults: %w", err)
	}

	children := 0
	if raw := m["children"]; raw != "" {
		children, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("metadata children: %w", err)
		}
	}

	amount, err := strconv.ParseInt(m["amountMinor"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("metadata amountMinor: %w", err)
	}

	return &BookingRequest{
		ApartmentID:   m["apartmentId"],
		ArrivalDate:   m["arrivalDate"],
		DepartureDate: m["departureDate"],
		Adults:        adults,
		Children:      children,
		FirstName:     m["firstName"],
		LastName:      m["lastName"],
		Email:         m["email"],
		Phone:         m["phone"],
		ChannelID:     m["channelId"],
		AmountMinor:   amount,
		Currency:      m["currency"],
	}, nil
}

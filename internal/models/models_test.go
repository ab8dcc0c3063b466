package models

import (
	"testing"
)

func validRequest() BookingRequest {
	return BookingRequest{
		ApartmentID:   "123",
		ArrivalDate:   "2024-06-01",
		DepartureDate: "2024-06-03",
		Adults:        2,
		FirstName:     "A",
		LastName:      "B",
		Email:         "a@b.com",
		Phone:         "+490000",
		AmountMinor:   20000,
		Currency:      "EUR",
	}
}

func TestBookingRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BookingRequest)
		wantErr error
	}{
		{"valid", func(b *BookingRequest) {}, nil},
		{"missing apartment", func(b *BookingRequest) { b.ApartmentID = "" }, ErrMissingFields},
		{"missing arrival", func(b *BookingRequest) { b.ArrivalDate = "" }, ErrMissingFields},
		{"bad date format", func(b *BookingRequest) { b.ArrivalDate = "01.06.2024" }, ErrInvalidDates},
		{"departure before arrival", func(b *BookingRequest) { b.DepartureDate = "2024-05-30" }, ErrInvalidDates},
		{"same day", func(b *BookingRequest) { b.DepartureDate = "2024-06-01" }, ErrInvalidDates},
		{"no adults", func(b *BookingRequest) { b.Adults = 0 }, ErrInvalidGuests},
		{"negative children", func(b *BookingRequest) { b.Children = -1 }, ErrInvalidGuests},
		{"missing email", func(b *BookingRequest) { b.Email = "" }, ErrInvalidContact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			if err := req.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNights(t *testing.T) {
	req := validRequest()
	if n := req.Nights(); n != 2 {
		t.Errorf("expected 2 nights, got %d", n)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	req := validRequest()
	req.Children = 1
	req.ChannelID = "70"

	restored, err := FromMetadata(req.ToMetadata())
	if err != nil {
		t.Fatalf("FromMetadata: %v", err)
	}
	if *restored != req {
		t.Errorf("round trip mismatch: got %+v, want %+v", *restored, req)
	}
}

func TestFromMetadataRejectsBadNumbers(t *testing.T) {
	base := validRequest()
	m := base.ToMetadata()
	m["adults"] = "two"
	if _, err := FromMetadata(m); err == nil {
		t.Error("expected error for unparseable adults")
	}

	base = validRequest()
	m = base.ToMetadata()
	m["amountMinor"] = ""
	if _, err := FromMetadata(m); err == nil {
		t.Error("expected error for missing amount")
	}
}

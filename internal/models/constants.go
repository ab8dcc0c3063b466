package models

// Payment method selectors accepted from the browser.
const (
	MethodStripe = "stripe"
	MethodPayPal = "paypal"
)

// Upstream payment statuses that release a booking.
const (
	StripeStatusSucceeded = "succeeded"
	PayPalStatusCompleted = "COMPLETED"
)

// Reservation payload constants for the property-management API.
const (
	ReservationStatusNew = "NEW"
	ChannelWebsite       = "website"
)

// Terminal states of a finalize attempt.
const (
	StateSuccess        = "success"
	StateRejected       = "rejected"
	StatePartialFailure = "partial-failure"
)

// DateFormat is the wire format for arrival/departure dates.
const DateFormat = "2006-01-02"

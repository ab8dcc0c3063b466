package metrics

import "testing"

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register()

	// Must not panic after double registration.
	IncHTTP("/health", 200)
	IncUpstream("smoobu", "ok")
	IncBooking("success")
}

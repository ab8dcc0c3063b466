package events

import (
	"encoding/json"
	"testing"
)

func TestPublishJSONFansOut(t *testing.T) {
	bus := NewEventBus()

	var got []BookingEventPayload
	bus.Subscribe(EventBookingConfirmed, func(e *Event) error {
		var p BookingEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		got = append(got, p)
		return nil
	})
	bus.Subscribe(EventBookingConfirmed, func(e *Event) error {
		var p BookingEventPayload
		_ = json.Unmarshal(e.Payload, &p)
		got = append(got, p)
		return nil
	})

	err := bus.PublishJSON(EventBookingConfirmed, BookingEventPayload{
		State:         "success",
		PaymentID:     "pi_1",
		ReservationID: "42",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0].ReservationID != "42" {
		t.Errorf("expected reservation id 42, got %s", got[0].ReservationID)
	}
}

func TestPublishJSONOnNilBus(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventPaymentInitiated, BookingEventPayload{}); err != nil {
		t.Fatalf("nil bus should be a no-op, got %v", err)
	}
}

func TestPublishUnsubscribedType(t *testing.T) {
	bus := NewEventBus()
	// Must not panic with no subscribers.
	bus.Publish(&Event{Type: EventBookingPartialFailure})
}

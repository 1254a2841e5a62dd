package queue

import "testing"

func TestBookingEventValidate(t *testing.T) {
	ev := BookingEvent{
		EventID: "a1b2",
		Kind:    "booking_confirmed",
		OrderID: "64b0c0ffee0000000000aaaa",
	}
	if err := ev.Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}
}

func TestBookingEventValidateRejectsMissingFields(t *testing.T) {
	tests := []BookingEvent{
		{Kind: "booking_confirmed", OrderID: "x"},
		{EventID: "a", OrderID: "x"},
		{EventID: "a", Kind: "booking_confirmed"},
	}
	for _, ev := range tests {
		if err := ev.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", ev)
		}
	}
}

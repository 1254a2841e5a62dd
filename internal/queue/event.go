package queue

import "fmt"

// BookingEvent is the message produced after a booking-affecting write
// commits. EventID doubles as the Kafka key and idempotency handle.
type BookingEvent struct {
	EventID     string `json:"event_id"`
	Kind        string `json:"kind"`
	OrderID     string `json:"order_id"`
	Recipient   string `json:"recipient,omitempty"`
	PetName     string `json:"pet_name,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
}

// Validate rejects malformed events before they reach a consumer.
func (e BookingEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if e.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	return nil
}

package notify

import (
	"context"
	"log"
)

// Notification kinds emitted by the booking core.
const (
	KindBookingConfirmed = "booking_confirmed"
	KindBookingCancelled = "booking_cancelled"
	KindBookingCompleted = "booking_completed"
)

// Notification carries everything a delivery channel needs: who to reach,
// which order it concerns, and the booking facts to render.
type Notification struct {
	Kind      string
	Recipient string
	OrderID   string
	Facts     map[string]string
}

// Dispatcher delivers a notification. Delivery is always best-effort from
// the caller's point of view; a failed dispatch never unwinds an order.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// LogDispatcher writes notifications to the log. It stands in wherever a
// real channel (mail, SMS) is not configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, n Notification) error {
	log.Printf("[NOTIFY] [INFO] %s order=%s to=%s facts=%v", n.Kind, n.OrderID, n.Recipient, n.Facts)
	return nil
}

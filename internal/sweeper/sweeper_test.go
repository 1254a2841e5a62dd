package sweeper

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"petheaven/internal/models"
)

func TestOverdueGraceWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	grace := 15 * time.Minute

	if !overdue(now.Add(-20*time.Minute), now, grace) {
		t.Fatal("appointment 20 minutes ago must be overdue with 15m grace")
	}
	if overdue(now.Add(-10*time.Minute), now, grace) {
		t.Fatal("appointment 10 minutes ago must not be overdue")
	}
	if overdue(now.Add(-15*time.Minute), now, grace) {
		t.Fatal("exactly at the grace boundary is not yet overdue")
	}
}

func TestOrderOverdueChecksServiceItemsOnly(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s := &Sweeper{grace: 15 * time.Minute}

	past := now.Add(-30 * time.Minute)
	productOrder := models.Order{
		Items: []models.OrderItem{{Quantity: 2}},
	}
	if s.orderOverdue(productOrder, now) {
		t.Fatal("order without service items can never be overdue")
	}

	serviceID := primitive.NewObjectID()
	bookingOrder := models.Order{
		Items: []models.OrderItem{{
			ServiceID:   &serviceID,
			ScheduledAt: &past,
		}},
	}
	if !s.orderOverdue(bookingOrder, now) {
		t.Fatal("booking 30 minutes past must be overdue")
	}
}

package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"petheaven/internal/models"
	"petheaven/internal/notify"
	"petheaven/internal/queue"
)

// Sweeper force-cancels bookings whose appointment time has passed the
// grace window without the service being started. It is the only actor
// allowed to cancel without the customer lead-time rule. Each
// cancellation is its own write: a crash mid-sweep just leaves the rest
// for the next tick.
type Sweeper struct {
	db       *mongo.Database
	events   *queue.Outbox
	grace    time.Duration
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func New(db *mongo.Database, events *queue.Outbox, grace, interval time.Duration) *Sweeper {
	return &Sweeper{
		db:       db,
		events:   events,
		grace:    grace,
		interval: interval,
	}
}

// Start launches the sweep loop. Stop (or cancelling the parent context)
// ends it.
func (s *Sweeper) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the current pass to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// overdue reports whether a booking scheduled at the given instant has
// outlived the grace window.
func overdue(scheduledAt, now time.Time, grace time.Duration) bool {
	return now.After(scheduledAt.Add(grace))
}

// sweepOnce scans bookings that are still PENDING or CONFIRMED and
// cancels every one whose appointment is past due.
func (s *Sweeper) sweepOnce(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{
		"bookingStatus": bson.M{"$in": bson.A{models.BookingPending, models.BookingConfirmed}},
		"items.scheduledAt": bson.M{
			"$ne":  nil,
			"$lte": now.Add(-s.grace),
		},
	}

	cursor, err := s.db.Collection("orders").Find(scanCtx, filter)
	if err != nil {
		log.Printf("[SWEEPER] [ERROR] scan: %v", err)
		return
	}
	defer cursor.Close(scanCtx)

	swept := 0
	for cursor.Next(scanCtx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			log.Printf("[SWEEPER] [ERROR] decode: %v", err)
			continue
		}
		if order.BookingStatus == nil || !s.orderOverdue(order, now) {
			continue
		}
		if s.cancelBooking(scanCtx, order) {
			swept++
		}
	}
	if err := cursor.Err(); err != nil {
		log.Printf("[SWEEPER] [ERROR] cursor: %v", err)
	}
	if swept > 0 {
		log.Printf("[SWEEPER] [INFO] cancelled %d overdue bookings", swept)
	}
}

func (s *Sweeper) orderOverdue(order models.Order, now time.Time) bool {
	for _, item := range order.Items {
		if item.IsService() && item.ScheduledAt != nil && overdue(*item.ScheduledAt, now, s.grace) {
			return true
		}
	}
	return false
}

// cancelBooking applies the forced transition. The filter pins the source
// state, so a booking an operator just moved is left alone.
func (s *Sweeper) cancelBooking(ctx context.Context, order models.Order) bool {
	from := *order.BookingStatus
	res, err := s.db.Collection("orders").UpdateOne(
		ctx,
		bson.M{"_id": order.ID, "bookingStatus": from},
		bson.M{"$set": bson.M{
			"bookingStatus": models.BookingCancelled,
			"status":        models.OrderCancelled,
		}},
	)
	if err != nil {
		log.Printf("[SWEEPER] [ERROR] cancel order %s: %v", order.ID.Hex(), err)
		return false
	}
	if res.MatchedCount == 0 {
		return false
	}

	if s.events != nil {
		ev := queue.BookingEvent{
			EventID: uuid.NewString(),
			Kind:    notify.KindBookingCancelled,
			OrderID: order.ID.Hex(),
		}
		if order.Guest != nil {
			ev.Recipient = order.Guest.Email
		}
		if err := s.events.Emit(ctx, ev); err != nil {
			log.Printf("[SWEEPER] [WARN] event for order %s not emitted: %v", order.ID.Hex(), err)
		}
	}
	return true
}

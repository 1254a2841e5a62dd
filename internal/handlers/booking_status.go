package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"petheaven/internal/config"
	"petheaven/internal/models"
	"petheaven/internal/notify"
	"petheaven/internal/queue"
)

// bookingTransitions is the legal adjacency of the booking lifecycle.
// COMPLETED and CANCELLED are terminal: no edge leaves them.
var bookingTransitions = map[string][]string{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted},
	models.BookingCompleted:  {},
	models.BookingCancelled:  {},
}

func canTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validBookingStatus(status string) bool {
	_, ok := bookingTransitions[status]
	return ok
}

// orderStatusFor mirrors a booking state onto the free-text order status
// kept alongside it.
func orderStatusFor(bookingStatus string) string {
	switch bookingStatus {
	case models.BookingPending:
		return models.OrderPending
	case models.BookingConfirmed:
		return models.OrderConfirmed
	case models.BookingInProgress:
		return models.OrderProcessing
	case models.BookingCompleted:
		return models.OrderCompleted
	case models.BookingCancelled:
		return models.OrderCancelled
	}
	return models.OrderPending
}

// cancellableAt enforces the customer-facing lead time: a booking may be
// cancelled only while the appointment is still at least leadTime away.
func cancellableAt(scheduledAt, now time.Time, leadTime time.Duration) bool {
	return scheduledAt.Sub(now) >= leadTime
}

// applyBookingTransition writes the new booking status and its order
// status mirror. The filter pins the expected source state so a
// concurrent transition loses cleanly instead of double-applying.
func applyBookingTransition(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID, from, to string) error {
	res, err := db.Collection("orders").UpdateOne(
		ctx,
		bson.M{"_id": orderID, "bookingStatus": from},
		bson.M{"$set": bson.M{
			"bookingStatus": to,
			"status":        orderStatusFor(to),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return invalidTransitionError{From: from, To: to}
	}
	return nil
}

func findOrder(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, notFoundError{Entity: "order"}
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// bookingRecipient resolves who a booking notification addresses: the
// owning account's email, or the guest contact captured at checkout.
func bookingRecipient(ctx context.Context, db *mongo.Database, order models.Order) string {
	if order.Guest != nil && order.Guest.Email != "" {
		return order.Guest.Email
	}
	if order.UserID == nil {
		return ""
	}
	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": *order.UserID}).Decode(&user); err != nil {
		return ""
	}
	return user.Email
}

// emitBookingEvent publishes a lifecycle event to the outbox. Best-effort:
// failures are logged, never surfaced to the caller.
func emitBookingEvent(ctx context.Context, db *mongo.Database, events *queue.Outbox, order models.Order, kind string) {
	if events == nil {
		return
	}
	ev := queue.BookingEvent{
		EventID:   uuid.NewString(),
		Kind:      kind,
		OrderID:   order.ID.Hex(),
		Recipient: bookingRecipient(ctx, db, order),
	}
	for _, item := range order.Items {
		if !item.IsService() {
			continue
		}
		ev.PetName = item.PetName
		ev.ServiceName = item.Name
		if item.ScheduledAt != nil {
			ev.ScheduledAt = item.ScheduledAt.Format(time.RFC3339)
		}
		break
	}
	if err := events.Emit(ctx, ev); err != nil {
		log.Printf("[BOOKING] [WARN] event %s for order %s not emitted: %v", kind, ev.OrderID, err)
	}
}

/* =========================
   OPERATOR STATUS CHANGE
========================= */

type updateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus is the operator path: adjacency-validated, no
// lead-time rule.
func UpdateBookingStatus(db *mongo.Database, events *queue.Outbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/booking-status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		var req updateBookingStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "status is required")
			return
		}
		if !validBookingStatus(req.Status) {
			respondWithError(c, http.StatusBadRequest, route, "unknown booking status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := findOrder(ctx, db, orderID)
		if err != nil {
			status := http.StatusInternalServerError
			var nf notFoundError
			if errors.As(err, &nf) {
				status = http.StatusNotFound
			}
			respondWithError(c, status, route, err.Error())
			return
		}
		if order.BookingStatus == nil {
			respondWithError(c, http.StatusBadRequest, route, "order has no booking to transition")
			return
		}

		from := *order.BookingStatus
		if !canTransition(from, req.Status) {
			respondWithError(c, http.StatusBadRequest, route, invalidTransitionError{From: from, To: req.Status}.Error())
			return
		}

		if err := applyBookingTransition(ctx, db, orderID, from, req.Status); err != nil {
			var conflict invalidTransitionError
			if errors.As(err, &conflict) {
				respondWithError(c, http.StatusBadRequest, route, conflict.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		switch req.Status {
		case models.BookingCompleted:
			emitBookingEvent(ctx, db, events, order, notify.KindBookingCompleted)
		case models.BookingCancelled:
			emitBookingEvent(ctx, db, events, order, notify.KindBookingCancelled)
		}

		log.Printf("[BOOKING] [INFO] order %s booking %s -> %s", orderID.Hex(), from, req.Status)
		respondOK(c, http.StatusOK, "booking status updated", gin.H{
			"orderId":       orderID.Hex(),
			"bookingStatus": req.Status,
		})
	}
}

/* =========================
   CUSTOMER CANCELLATION
========================= */

// CancelBooking is the customer path: same adjacency rules plus the
// minimum lead time before the appointment.
func CancelBooking(db *mongo.Database, events *queue.Outbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/:id/items/:itemId/cancel"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}
		itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := findOrder(ctx, db, orderID)
		if err != nil {
			status := http.StatusInternalServerError
			var nf notFoundError
			if errors.As(err, &nf) {
				status = http.StatusNotFound
			}
			respondWithError(c, status, route, err.Error())
			return
		}
		if order.BookingStatus == nil {
			respondWithError(c, http.StatusBadRequest, route, "order has no booking to cancel")
			return
		}

		var item *models.OrderItem
		for i := range order.Items {
			if order.Items[i].ID == itemID && order.Items[i].IsService() {
				item = &order.Items[i]
				break
			}
		}
		if item == nil || item.ScheduledAt == nil {
			respondWithError(c, http.StatusNotFound, route, "booking item not found")
			return
		}

		from := *order.BookingStatus
		if !canTransition(from, models.BookingCancelled) {
			respondWithError(c, http.StatusBadRequest, route, invalidTransitionError{From: from, To: models.BookingCancelled}.Error())
			return
		}

		if !cancellableAt(*item.ScheduledAt, time.Now().UTC(), config.AppEnv.CancelLeadTime) {
			respondWithError(c, http.StatusBadRequest, route, "bookings can only be cancelled at least 12 hours before the appointment")
			return
		}

		if err := applyBookingTransition(ctx, db, orderID, from, models.BookingCancelled); err != nil {
			var conflict invalidTransitionError
			if errors.As(err, &conflict) {
				respondWithError(c, http.StatusBadRequest, route, conflict.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		emitBookingEvent(ctx, db, events, order, notify.KindBookingCancelled)

		log.Printf("[BOOKING] [INFO] order %s cancelled by customer", orderID.Hex())
		respondOK(c, http.StatusOK, "booking cancelled", gin.H{
			"orderId":       orderID.Hex(),
			"bookingStatus": models.BookingCancelled,
		})
	}
}

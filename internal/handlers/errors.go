package handlers

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Failure classes raised inside the checkout/booking transactions. Each is
// carried out of the transaction closure and matched with errors.As at the
// handler boundary, where it picks its HTTP status and user-facing message.

type validationError struct {
	Message string
}

func (e validationError) Error() string { return e.Message }

type notFoundError struct {
	Entity string
}

func (e notFoundError) Error() string { return e.Entity + " not found" }

type productUnavailableError struct {
	ProductID primitive.ObjectID
}

func (e productUnavailableError) Error() string {
	return "product is not available for purchase"
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %d available, %d requested", e.Available, e.Requested)
}

type serviceInactiveError struct {
	ServiceID primitive.ObjectID
}

func (e serviceInactiveError) Error() string { return "service is not currently offered" }

type couponRejectedError struct {
	Code   string
	Reason string
}

func (e couponRejectedError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason)
}

type totalMismatchError struct {
	Expected   float64
	Calculated float64
}

func (e totalMismatchError) Error() string {
	return fmt.Sprintf("order total mismatch: expected %.0f, calculated %.0f", e.Expected, e.Calculated)
}

type slotFullError struct {
	Hour int
}

func (e slotFullError) Error() string {
	return fmt.Sprintf("no appointment capacity left at %02d:00", e.Hour)
}

type invalidTransitionError struct {
	From string
	To   string
}

func (e invalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition from %s to %s", e.From, e.To)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking lifecycle states. COMPLETED and CANCELLED are terminal.
const (
	BookingPending    = "PENDING"
	BookingConfirmed  = "CONFIRMED"
	BookingInProgress = "IN_PROGRESS"
	BookingCompleted  = "COMPLETED"
	BookingCancelled  = "CANCELLED"
)

// Merchandise order statuses, kept as free text mirroring the booking
// status where an order carries both.
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipping   = "shipping"
	OrderDelivered  = "delivered"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

const (
	PaymentUnpaid = "UNPAID"
	PaymentPaid   = "PAID"
)

// OrderItem is one line within an order: either a product purchase or a
// spa appointment, never both.
type OrderItem struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	ProductID *primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	ServiceID *primitive.ObjectID `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	Name      string              `bson:"name" json:"name"`
	Quantity  int                 `bson:"quantity" json:"quantity"`

	// Product path only.
	UnitPrice  float64 `bson:"unitPrice,omitempty" json:"unitPrice,omitempty"`
	TotalPrice float64 `bson:"totalPrice,omitempty" json:"totalPrice,omitempty"`

	// Service path only. ScheduledAt is stored in UTC; RealPrice stays nil
	// until the pet is weighed in at the start of the appointment.
	ScheduledAt *time.Time `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	PetName     string     `bson:"petName,omitempty" json:"petName,omitempty"`
	PetType     string     `bson:"petType,omitempty" json:"petType,omitempty"`
	PetWeight   float64    `bson:"petWeight,omitempty" json:"petWeight,omitempty"`
	RealPrice   *float64   `bson:"realPrice,omitempty" json:"realPrice,omitempty"`
	IsRated     bool       `bson:"isRated" json:"isRated"`
}

// IsService reports whether the line is a spa appointment.
func (i OrderItem) IsService() bool { return i.ServiceID != nil }

// OrderGuest captures contact details for guest checkout.
type OrderGuest struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// Order is the checkout header. Status (merchandise) and BookingStatus
// (appointments) are independent: a pure booking has no Status, a pure
// purchase has no BookingStatus, a mixed cart carries both.
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        *primitive.ObjectID `bson:"userId" json:"userId"`
	Guest         *OrderGuest         `bson:"guest,omitempty" json:"guest,omitempty"`
	Items         []OrderItem         `bson:"items" json:"items"`
	PaymentMethod string              `bson:"paymentMethod" json:"paymentMethod"`
	DeliveryID    *primitive.ObjectID `bson:"deliveryId,omitempty" json:"deliveryId,omitempty"`
	DeliveryFee   float64             `bson:"deliveryFee" json:"deliveryFee"`
	CouponID      *primitive.ObjectID `bson:"couponId,omitempty" json:"couponId,omitempty"`
	Discount      float64             `bson:"discount" json:"discount"`
	TotalPrice    *float64            `bson:"totalPrice" json:"totalPrice"`
	Status        *string             `bson:"status" json:"status"`
	BookingStatus *string             `bson:"bookingStatus" json:"bookingStatus"`
	PaymentStatus string              `bson:"paymentStatus" json:"paymentStatus"`
	OrderDate     time.Time           `bson:"orderDate" json:"orderDate"`
}

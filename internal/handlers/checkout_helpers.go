package handlers

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// itemDraft is a checkout line after parse/validate, before any database
// work: ids resolved, appointment normalized to UTC.
type itemDraft struct {
	ProductID   *primitive.ObjectID
	ServiceID   *primitive.ObjectID
	Quantity    int
	ScheduledAt time.Time
	PetName     string
	PetType     string
	PetWeight   float64
}

// appointmentLayout is the wall-clock format the booking UI submits,
// interpreted in the shop's timezone.
const appointmentLayout = "2006-01-02T15:04"

// buildItemDrafts validates the raw line items: positive quantity,
// exactly one of product/service, pet metadata and a normalized UTC
// appointment instant on the service path.
func buildItemDrafts(items []checkoutItemRequest, loc *time.Location) ([]itemDraft, error) {
	if len(items) == 0 {
		return nil, validationError{Message: "at least one item is required"}
	}

	drafts := make([]itemDraft, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, validationError{Message: "quantity must be greater than zero"}
		}

		hasProduct := strings.TrimSpace(item.ProductID) != ""
		hasService := strings.TrimSpace(item.ServiceID) != ""
		if hasProduct == hasService {
			return nil, validationError{Message: "each item needs exactly one of productId or serviceId"}
		}

		draft := itemDraft{Quantity: item.Quantity}

		if hasProduct {
			productID, err := primitive.ObjectIDFromHex(item.ProductID)
			if err != nil {
				return nil, validationError{Message: "invalid productId"}
			}
			draft.ProductID = &productID
		} else {
			serviceID, err := primitive.ObjectIDFromHex(item.ServiceID)
			if err != nil {
				return nil, validationError{Message: "invalid serviceId"}
			}
			if strings.TrimSpace(item.PetName) == "" || strings.TrimSpace(item.PetType) == "" {
				return nil, validationError{Message: "pet name and pet type are required for bookings"}
			}
			scheduledAt, err := parseAppointment(item.ScheduledAt, loc)
			if err != nil {
				return nil, err
			}
			draft.ServiceID = &serviceID
			draft.ScheduledAt = scheduledAt
			draft.PetName = strings.TrimSpace(item.PetName)
			draft.PetType = strings.TrimSpace(item.PetType)
			draft.PetWeight = item.PetWeight
		}

		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// parseAppointment converts a local wall-clock instant to UTC. RFC3339
// input (already zoned) is accepted as well.
func parseAppointment(value string, loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, validationError{Message: "appointment time is required for bookings"}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(appointmentLayout, raw, loc)
	if err != nil {
		return time.Time{}, validationError{Message: "invalid appointment time"}
	}
	return t.UTC(), nil
}

// isBookingOnly reports whether every line item is a service, making the
// cart a pure booking.
func isBookingOnly(drafts []itemDraft) bool {
	for _, d := range drafts {
		if d.ProductID != nil {
			return false
		}
	}
	return true
}

func validPaymentMethod(method string) bool {
	switch method {
	case "cod", "card", "banking":
		return true
	}
	return false
}

// totalsMatch compares the caller's expected total against the computed
// one, tolerating rounding drift of at most one currency unit.
func totalsMatch(expected, calculated float64) bool {
	return math.Abs(expected-calculated) <= 1
}

func parseTokenClaims(raw, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

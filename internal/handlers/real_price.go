package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"petheaven/internal/models"
)

// Service categories for in-store pricing, resolved by keyword from the
// service name.
const (
	categoryBath     = "bath"
	categoryCombo    = "combo"
	categoryGrooming = "grooming"
)

// realPriceTable maps a category to its five weight-bucket prices
// (<5kg, 5-10kg, 10-20kg, 20-40kg, >40kg), in VND.
var realPriceTable = map[string][5]float64{
	categoryBath:     {150000, 200000, 250000, 300000, 350000},
	categoryGrooming: {200000, 250000, 300000, 350000, 400000},
	categoryCombo:    {300000, 380000, 450000, 520000, 600000},
}

// classifyService picks the pricing category from the service name.
// Combo is checked first since combo names usually mention both parts.
func classifyService(name string) (string, error) {
	lowered := strings.ToLower(name)
	switch {
	case strings.Contains(lowered, "combo"):
		return categoryCombo, nil
	case strings.Contains(lowered, "groom") || strings.Contains(lowered, "cắt tỉa"):
		return categoryGrooming, nil
	case strings.Contains(lowered, "bath") || strings.Contains(lowered, "tắm"):
		return categoryBath, nil
	}
	return "", validationError{Message: "cannot determine pricing category for service " + name}
}

// weightBucket maps a pet weight in kg to a table column. Weights outside
// [0, 100] are a validation error, never a silent zero.
func weightBucket(weight float64) (int, error) {
	if weight < 0 || weight > 100 {
		return 0, validationError{Message: "pet weight must be between 0 and 100 kg"}
	}
	switch {
	case weight < 5:
		return 0, nil
	case weight <= 10:
		return 1, nil
	case weight <= 20:
		return 2, nil
	case weight <= 40:
		return 3, nil
	}
	return 4, nil
}

// realPriceFor resolves the final billed price for a service once the pet
// has been weighed in-store.
func realPriceFor(serviceName string, weight float64) (float64, error) {
	category, err := classifyService(serviceName)
	if err != nil {
		return 0, err
	}
	bucket, err := weightBucket(weight)
	if err != nil {
		return 0, err
	}
	return realPriceTable[category][bucket], nil
}

/* =========================
   REAL PRICE ENDPOINT
========================= */

// Weight carries no binding tag: zero is a legal in-range weight, and
// weightBucket rejects anything outside [0, 100] itself.
type updateRealPriceRequest struct {
	Weight      float64 `json:"weight"`
	PetType     string  `json:"petType"`
	ServiceName string  `json:"serviceName"`
}

// UpdateRealPrice writes the weighed-in price onto a booking line item,
// exactly once, and moves the booking into IN_PROGRESS in the same step.
func UpdateRealPrice(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/items/:itemId/real-price"
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

		var req updateRealPriceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
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
			respondWithError(c, http.StatusBadRequest, route, "order has no booking")
			return
		}

		var item *models.OrderItem
		for i := range order.Items {
			if order.Items[i].ID == itemID && order.Items[i].IsService() {
				item = &order.Items[i]
				break
			}
		}
		if item == nil {
			respondWithError(c, http.StatusNotFound, route, "booking item not found")
			return
		}
		if item.RealPrice != nil {
			respondWithError(c, http.StatusBadRequest, route, "real price already set for this booking")
			return
		}

		serviceName := req.ServiceName
		if serviceName == "" {
			serviceName = item.Name
		}

		price, err := realPriceFor(serviceName, req.Weight)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		from := *order.BookingStatus
		if !canTransition(from, models.BookingInProgress) {
			respondWithError(c, http.StatusBadRequest, route, invalidTransitionError{From: from, To: models.BookingInProgress}.Error())
			return
		}

		// Same race guard as the status handlers: the filter pins both the
		// source state and the still-unset price.
		res, err := db.Collection("orders").UpdateOne(
			ctx,
			bson.M{
				"_id":           orderID,
				"bookingStatus": from,
				"items": bson.M{"$elemMatch": bson.M{
					"_id":       itemID,
					"realPrice": bson.M{"$exists": false},
				}},
			},
			bson.M{"$set": bson.M{
				"bookingStatus":     models.BookingInProgress,
				"status":            orderStatusFor(models.BookingInProgress),
				"items.$.realPrice": price,
				"items.$.petWeight": req.Weight,
				"items.$.petType":   petTypeOr(item.PetType, req.PetType),
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusBadRequest, route, "booking changed concurrently, retry")
			return
		}

		log.Printf("[BOOKING] [INFO] order %s item %s real price %.0f", orderID.Hex(), itemID.Hex(), price)
		respondOK(c, http.StatusOK, "real price set", gin.H{
			"orderId":   orderID.Hex(),
			"itemId":    itemID.Hex(),
			"realPrice": price,
		})
	}
}

func petTypeOr(existing, provided string) string {
	if provided != "" {
		return provided
	}
	return existing
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petheaven/internal/models"
)

var allowedOrderStatuses = map[string]bool{
	models.OrderPending:    true,
	models.OrderConfirmed:  true,
	models.OrderProcessing: true,
	models.OrderShipping:   true,
	models.OrderDelivered:  true,
	models.OrderCompleted:  true,
	models.OrderCancelled:  true,
}

// ListPendingOrders pages through merchandise orders awaiting handling.
func ListPendingOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders/pending"
		defer handlePanic(c, route)

		skip, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "orderDate", Value: -1}}).
			SetSkip(skip).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"status": models.OrderPending}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to parse orders")
			return
		}

		respondOK(c, http.StatusOK, "pending orders", orders)
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus moves the merchandise status only; the booking
// lifecycle has its own validated path.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "status is required")
			return
		}
		if !allowedOrderStatuses[req.Status] {
			respondWithError(c, http.StatusBadRequest, route, "unknown order status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").UpdateOne(
			ctx,
			bson.M{"_id": orderID, "status": bson.M{"$ne": nil}},
			bson.M{"$set": bson.M{"status": req.Status}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		respondOK(c, http.StatusOK, "order status updated", gin.H{
			"orderId": orderID.Hex(),
			"status":  req.Status,
		})
	}
}

// ListMyBookings returns the authenticated user's service bookings.
func ListMyBookings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/mine"
		defer handlePanic(c, route)

		rawID, exists := c.Get("userId")
		userIDHex, _ := rawID.(string)
		if !exists || userIDHex == "" {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}
		userID, err := primitive.ObjectIDFromHex(userIDHex)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		skip, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "orderDate", Value: -1}}).
			SetSkip(skip).
			SetLimit(limit)

		filter := bson.M{
			"userId":        userID,
			"bookingStatus": bson.M{"$ne": nil},
		}

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "bookings could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to parse bookings")
			return
		}

		respondOK(c, http.StatusOK, "bookings", orders)
	}
}

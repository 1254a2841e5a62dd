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

	"petheaven/internal/config"
	"petheaven/internal/models"
	"petheaven/internal/notify"
	"petheaven/internal/queue"
)

/* =========================
   REQUEST DTOs
========================= */

type checkoutItemRequest struct {
	ProductID   string  `json:"productId"`
	ServiceID   string  `json:"serviceId"`
	Quantity    int     `json:"quantity" binding:"required"`
	ScheduledAt string  `json:"scheduledAt"`
	PetName     string  `json:"petName"`
	PetType     string  `json:"petType"`
	PetWeight   float64 `json:"petWeight"`
}

type checkoutGuestRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
}

type checkoutRequest struct {
	Guest         *checkoutGuestRequest `json:"guest"`
	DeliveryID    string                `json:"deliveryId"`
	CouponCode    string                `json:"couponCode"`
	PaymentMethod string                `json:"paymentMethod" binding:"required"`
	ExpectedTotal *float64              `json:"expectedTotal"`
	Items         []checkoutItemRequest `json:"items" binding:"required"`
}

/* =========================
   CREATE ORDER
========================= */

// CreateOrder runs the whole checkout as one Mongo transaction: stock
// decrements, slot recheck, coupon redemption and the order insert either
// all land or none do. The confirmation event is emitted after commit and
// never fails the order.
func CreateOrder(db *mongo.Database, jwtSecret string, events *queue.Outbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[CHECKOUT] [ERROR] token validation failed:", err)
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}
		if userID == nil && req.Guest == nil {
			respondWithError(c, http.StatusBadRequest, route, "guest contact details are required for guest checkout")
			return
		}
		if !validPaymentMethod(req.PaymentMethod) {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		cfg := config.AppEnv
		loc, err := time.LoadLocation(cfg.BookingTimezone)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "timezone misconfigured")
			return
		}

		drafts, err := buildItemDrafts(req.Items, loc)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		bookingOnly := isBookingOnly(drafts)
		if !bookingOnly {
			if req.DeliveryID == "" {
				respondWithError(c, http.StatusBadRequest, route, "delivery method is required for product orders")
				return
			}
			if req.ExpectedTotal == nil {
				respondWithError(c, http.StatusBadRequest, route, "expected total is required for product orders")
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var order models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			built, err := buildOrderInTransaction(sessCtx, db, req, drafts, bookingOnly, userID, loc, cfg)
			if err != nil {
				return nil, err
			}
			res, err := db.Collection("orders").InsertOne(sessCtx, built)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				built.ID = id
			}
			order = built
			return nil, nil
		})
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}

		// Post-commit, best-effort: confirmation notification for bookings.
		if order.BookingStatus != nil {
			emitBookingEvent(ctx, db, events, order, notify.KindBookingConfirmed)
		}

		if userID != nil {
			log.Println("[CHECKOUT] [INFO] order created for user:", userID.Hex())
		} else {
			log.Println("[CHECKOUT] [INFO] guest order created")
		}

		respondOK(c, http.StatusCreated, "order created", gin.H{
			"orderId": order.ID.Hex(),
			"order":   order,
		})
	}
}

// buildOrderInTransaction performs every read-then-write step of the
// checkout against the session context, so an abort undoes all of it.
func buildOrderInTransaction(
	sessCtx mongo.SessionContext,
	db *mongo.Database,
	req checkoutRequest,
	drafts []itemDraft,
	bookingOnly bool,
	userID *primitive.ObjectID,
	loc *time.Location,
	cfg config.Config,
) (models.Order, error) {
	now := time.Now().UTC()

	var deliveryID *primitive.ObjectID
	deliveryFee := 0.0
	if !bookingOnly {
		id, err := primitive.ObjectIDFromHex(req.DeliveryID)
		if err != nil {
			return models.Order{}, validationError{Message: "invalid delivery method id"}
		}
		var method models.DeliveryMethod
		err = db.Collection("deliveries").FindOne(sessCtx, bson.M{"_id": id, "isActive": true}).Decode(&method)
		if err == mongo.ErrNoDocuments {
			return models.Order{}, notFoundError{Entity: "delivery method"}
		}
		if err != nil {
			return models.Order{}, err
		}
		deliveryID = &id
		deliveryFee = method.Fee
	}

	items := make([]models.OrderItem, 0, len(drafts))
	subtotal := 0.0
	hasService := false

	for _, draft := range drafts {
		switch {
		case draft.ProductID != nil:
			item, lineTotal, err := reserveProduct(sessCtx, db, draft)
			if err != nil {
				return models.Order{}, err
			}
			items = append(items, item)
			subtotal += lineTotal

		case draft.ServiceID != nil:
			item, err := reserveAppointment(sessCtx, db, draft, loc, cfg)
			if err != nil {
				return models.Order{}, err
			}
			items = append(items, item)
			hasService = true
		}
	}

	var couponID *primitive.ObjectID
	discount := 0.0
	if req.CouponCode != "" {
		if bookingOnly {
			return models.Order{}, validationError{Message: "coupons apply to product orders only"}
		}
		coupon, err := findCouponByCode(sessCtx, db, req.CouponCode)
		if err != nil {
			return models.Order{}, err
		}
		if err := couponUsable(coupon, now, subtotal); err != nil {
			return models.Order{}, err
		}
		if err := redeemCoupon(sessCtx, db, coupon); err != nil {
			return models.Order{}, err
		}
		couponID = &coupon.ID
		discount = couponDiscount(subtotal, coupon.DiscountPercent)
	}

	order := models.Order{
		UserID:        userID,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		DeliveryID:    deliveryID,
		DeliveryFee:   deliveryFee,
		CouponID:      couponID,
		Discount:      discount,
		PaymentStatus: paymentStatusFor(req.PaymentMethod),
		OrderDate:     now,
	}
	if req.Guest != nil {
		order.Guest = &models.OrderGuest{
			Name:  strings.TrimSpace(req.Guest.Name),
			Phone: strings.TrimSpace(req.Guest.Phone),
			Email: strings.TrimSpace(req.Guest.Email),
		}
	}

	if bookingOnly {
		bookingStatus := models.BookingConfirmed
		order.BookingStatus = &bookingStatus
	} else {
		finalTotal := subtotal - discount + deliveryFee
		if req.ExpectedTotal != nil && !totalsMatch(*req.ExpectedTotal, finalTotal) {
			return models.Order{}, totalMismatchError{Expected: *req.ExpectedTotal, Calculated: finalTotal}
		}
		orderStatus := models.OrderPending
		order.Status = &orderStatus
		order.TotalPrice = &finalTotal
		if hasService {
			bookingStatus := models.BookingConfirmed
			order.BookingStatus = &bookingStatus
		}
	}

	return order, nil
}

// reserveProduct validates one product line and decrements its stock. The
// update filter re-checks stock so a concurrent checkout cannot oversell.
func reserveProduct(sessCtx mongo.SessionContext, db *mongo.Database, draft itemDraft) (models.OrderItem, float64, error) {
	var product models.Product
	err := db.Collection("products").FindOne(
		sessCtx,
		bson.M{
			"_id":       *draft.ProductID,
			"isDeleted": bson.M{"$ne": true},
		},
	).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return models.OrderItem{}, 0, notFoundError{Entity: "product"}
	}
	if err != nil {
		return models.OrderItem{}, 0, err
	}

	if !product.Available() {
		return models.OrderItem{}, 0, productUnavailableError{ProductID: product.ID}
	}
	if product.Stock < draft.Quantity {
		return models.OrderItem{}, 0, outOfStockError{
			ProductID: product.ID,
			Available: product.Stock,
			Requested: draft.Quantity,
		}
	}
	if product.Price <= 0 {
		return models.OrderItem{}, 0, validationError{Message: "product has no valid price"}
	}

	filter := bson.M{
		"_id":       product.ID,
		"isDeleted": bson.M{"$ne": true},
		"stock":     bson.M{"$gte": draft.Quantity},
	}
	update := bson.M{"$inc": bson.M{
		"stock": -draft.Quantity,
		"sold":  draft.Quantity,
	}}

	res, err := db.Collection("products").UpdateOne(sessCtx, filter, update)
	if err != nil {
		return models.OrderItem{}, 0, err
	}
	if res.MatchedCount == 0 {
		return models.OrderItem{}, 0, outOfStockError{
			ProductID: product.ID,
			Available: product.Stock,
			Requested: draft.Quantity,
		}
	}

	lineTotal := product.Price * float64(draft.Quantity)
	return models.OrderItem{
		ID:         primitive.NewObjectID(),
		ProductID:  &product.ID,
		Name:       product.Name,
		Quantity:   draft.Quantity,
		UnitPrice:  product.Price,
		TotalPrice: lineTotal,
	}, lineTotal, nil
}

// reserveAppointment validates one service line and re-runs the bucket
// occupancy count inside the transaction, closing the race between the
// availability the client saw and the commit.
func reserveAppointment(sessCtx mongo.SessionContext, db *mongo.Database, draft itemDraft, loc *time.Location, cfg config.Config) (models.OrderItem, error) {
	var svc models.SpaService
	err := db.Collection("services").FindOne(sessCtx, bson.M{"_id": *draft.ServiceID}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return models.OrderItem{}, notFoundError{Entity: "service"}
	}
	if err != nil {
		return models.OrderItem{}, err
	}
	if !svc.IsActive {
		return models.OrderItem{}, serviceInactiveError{ServiceID: svc.ID}
	}

	local := draft.ScheduledAt.In(loc)
	hour := local.Hour()
	if hour < cfg.OpenHour || hour >= cfg.CloseHour {
		return models.OrderItem{}, validationError{Message: "appointment is outside operating hours"}
	}

	bucketStart := draft.ScheduledAt.Truncate(time.Hour)
	count, err := countBucketBookings(sessCtx, db, bucketStart)
	if err != nil {
		return models.OrderItem{}, err
	}
	if count >= cfg.SlotCapacity {
		return models.OrderItem{}, slotFullError{Hour: hour}
	}

	scheduledAt := draft.ScheduledAt
	return models.OrderItem{
		ID:          primitive.NewObjectID(),
		ServiceID:   &svc.ID,
		Name:        svc.Name,
		Quantity:    draft.Quantity,
		ScheduledAt: &scheduledAt,
		PetName:     draft.PetName,
		PetType:     draft.PetType,
		PetWeight:   draft.PetWeight,
	}, nil
}

// respondCheckoutError maps transaction failures onto the error taxonomy:
// validation and conflicts answer 400, missing entities 404, anything
// else is a transaction abort answered as 500.
func respondCheckoutError(c *gin.Context, route string, err error) {
	var (
		invalid     validationError
		missing     notFoundError
		unavailable productUnavailableError
		stock       outOfStockError
		inactive    serviceInactiveError
		coupon      couponRejectedError
		mismatch    totalMismatchError
		slot        slotFullError
	)
	switch {
	case errors.As(err, &invalid):
		respondWithError(c, http.StatusBadRequest, route, invalid.Error())
	case errors.As(err, &missing):
		respondWithError(c, http.StatusNotFound, route, missing.Error())
	case errors.As(err, &unavailable):
		respondWithError(c, http.StatusBadRequest, route, unavailable.Error())
	case errors.As(err, &stock):
		respondWithError(c, http.StatusBadRequest, route, stock.Error())
	case errors.As(err, &inactive):
		respondWithError(c, http.StatusBadRequest, route, inactive.Error())
	case errors.As(err, &coupon):
		respondWithError(c, http.StatusBadRequest, route, coupon.Error())
	case errors.As(err, &mismatch):
		respondWithError(c, http.StatusBadRequest, route, mismatch.Error())
	case errors.As(err, &slot):
		respondWithError(c, http.StatusBadRequest, route, slot.Error())
	default:
		log.Printf("[%s] transaction aborted: %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "order could not be created")
	}
}

// paymentStatusFor derives the initial payment state. Every method
// starts unpaid; online gateways flip it via a callback that lives
// outside this service.
func paymentStatusFor(string) string { return models.PaymentUnpaid }

func userIDFromHeader(header, secret string) (*primitive.ObjectID, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	claims, err := parseTokenClaims(parts[1], secret)
	if err != nil {
		return nil, err
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return nil, errors.New("userId claim missing")
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return nil, errors.New("invalid userId")
	}

	return &userID, nil
}

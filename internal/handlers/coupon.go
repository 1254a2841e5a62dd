package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"petheaven/internal/models"
)

// couponUsable decides whether a coupon can be applied to an order with
// the given subtotal at the given instant. The returned error is always a
// couponRejectedError naming the reason.
func couponUsable(coupon models.Coupon, now time.Time, subtotal float64) error {
	if !coupon.IsActive {
		return couponRejectedError{Code: coupon.Code, Reason: "coupon is inactive"}
	}
	if now.Before(coupon.ValidFrom) {
		return couponRejectedError{Code: coupon.Code, Reason: "coupon is not yet valid"}
	}
	if now.After(coupon.ValidTo) {
		return couponRejectedError{Code: coupon.Code, Reason: "coupon has expired"}
	}
	if coupon.UsedCount >= coupon.UsageLimit {
		return couponRejectedError{Code: coupon.Code, Reason: "usage limit reached"}
	}
	if subtotal < coupon.MinOrderValue {
		return couponRejectedError{Code: coupon.Code, Reason: "order total below coupon minimum"}
	}
	return nil
}

func couponDiscount(subtotal, discountPercent float64) float64 {
	return subtotal * discountPercent / 100
}

// couponStatus is the derived active/inactive state reported to readers:
// a coupon outside its window or out of uses reads as inactive regardless
// of its stored flag.
func couponStatus(coupon models.Coupon, now time.Time) string {
	if couponUsable(coupon, now, coupon.MinOrderValue) != nil {
		return "inactive"
	}
	return "active"
}

// redeemCoupon increments usedCount inside the caller's transaction. The
// filter re-checks the limit so two concurrent checkouts cannot both take
// the last use.
func redeemCoupon(ctx context.Context, db *mongo.Database, coupon models.Coupon) error {
	filter := bson.M{
		"_id":       coupon.ID,
		"usedCount": bson.M{"$lt": coupon.UsageLimit},
	}
	update := bson.M{"$inc": bson.M{"usedCount": 1}}

	res, err := db.Collection("coupons").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return couponRejectedError{Code: coupon.Code, Reason: "usage limit reached"}
	}
	return nil
}

func findCouponByCode(ctx context.Context, db *mongo.Database, code string) (models.Coupon, error) {
	var coupon models.Coupon
	err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return models.Coupon{}, notFoundError{Entity: "coupon"}
	}
	if err != nil {
		return models.Coupon{}, err
	}
	return coupon, nil
}

package handlers

import (
	"errors"
	"testing"
	"time"

	"petheaven/internal/models"
)

func activeCoupon() models.Coupon {
	return models.Coupon{
		Code:            "SPA10",
		DiscountPercent: 10,
		MinOrderValue:   100000,
		ValidFrom:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:         time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		UsageLimit:      100,
		UsedCount:       0,
		IsActive:        true,
	}
}

func TestCouponUsableInsideWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := couponUsable(activeCoupon(), now, 200000); err != nil {
		t.Fatalf("expected coupon to be usable, got %v", err)
	}
}

func TestCouponUsableRejectsOutsideWindow(t *testing.T) {
	tests := []time.Time{
		time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, now := range tests {
		err := couponUsable(activeCoupon(), now, 200000)
		var rejected couponRejectedError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected couponRejectedError at %v, got %v", now, err)
		}
	}
}

func TestCouponUsableRejectsExhaustedCoupon(t *testing.T) {
	coupon := activeCoupon()
	coupon.UsedCount = coupon.UsageLimit

	err := couponUsable(coupon, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 200000)
	var rejected couponRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected couponRejectedError, got %v", err)
	}
}

func TestCouponUsableRejectsBelowMinimum(t *testing.T) {
	err := couponUsable(activeCoupon(), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 50000)
	if err == nil {
		t.Fatal("expected rejection below minimum order value")
	}
}

func TestCouponDiscount(t *testing.T) {
	if got := couponDiscount(200000, 10); got != 20000 {
		t.Fatalf("expected discount 20000, got %v", got)
	}
}

func TestCouponStatusReflectsWindowAndUsage(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := couponStatus(activeCoupon(), now); got != "active" {
		t.Fatalf("expected active, got %s", got)
	}

	exhausted := activeCoupon()
	exhausted.UsedCount = exhausted.UsageLimit
	if got := couponStatus(exhausted, now); got != "inactive" {
		t.Fatalf("expected inactive for exhausted coupon, got %s", got)
	}

	if got := couponStatus(activeCoupon(), time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)); got != "inactive" {
		t.Fatalf("expected inactive outside window, got %s", got)
	}
}

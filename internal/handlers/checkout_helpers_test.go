package handlers

import (
	"testing"
	"time"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestBuildItemDraftsRejectsEmptyCart(t *testing.T) {
	_, err := buildItemDrafts(nil, testLocation(t))
	if err == nil {
		t.Fatal("expected validation error for empty cart")
	}
}

func TestBuildItemDraftsRejectsNonPositiveQuantity(t *testing.T) {
	items := []checkoutItemRequest{
		{ProductID: "64b0c0ffee0000000000aaaa", Quantity: 0},
	}
	_, err := buildItemDrafts(items, testLocation(t))
	if err == nil {
		t.Fatal("expected validation error for quantity 0")
	}
}

func TestBuildItemDraftsRequiresExactlyOneReference(t *testing.T) {
	tests := []checkoutItemRequest{
		{Quantity: 1},
		{Quantity: 1, ProductID: "64b0c0ffee0000000000aaaa", ServiceID: "64b0c0ffee0000000000bbbb"},
	}
	for _, item := range tests {
		if _, err := buildItemDrafts([]checkoutItemRequest{item}, testLocation(t)); err == nil {
			t.Fatalf("expected validation error for item %+v", item)
		}
	}
}

func TestBuildItemDraftsRequiresPetMetadata(t *testing.T) {
	items := []checkoutItemRequest{
		{
			ServiceID:   "64b0c0ffee0000000000bbbb",
			Quantity:    1,
			ScheduledAt: "2026-09-01T09:00",
			PetName:     "",
			PetType:     "dog",
		},
	}
	_, err := buildItemDrafts(items, testLocation(t))
	if err == nil {
		t.Fatal("expected validation error for missing pet name")
	}
}

func TestParseAppointmentNormalizesLocalTimeToUTC(t *testing.T) {
	loc := testLocation(t)

	got, err := parseAppointment("2026-09-01T09:00", loc)
	if err != nil {
		t.Fatalf("parseAppointment returned error: %v", err)
	}
	// 09:00 in UTC+7 is 02:00 UTC.
	want := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
}

func TestParseAppointmentAcceptsRFC3339(t *testing.T) {
	got, err := parseAppointment("2026-09-01T09:00:00+07:00", testLocation(t))
	if err != nil {
		t.Fatalf("parseAppointment returned error: %v", err)
	}
	want := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIsBookingOnly(t *testing.T) {
	items := []checkoutItemRequest{
		{
			ServiceID:   "64b0c0ffee0000000000bbbb",
			Quantity:    1,
			ScheduledAt: "2026-09-01T09:00",
			PetName:     "Milo",
			PetType:     "dog",
		},
	}
	drafts, err := buildItemDrafts(items, testLocation(t))
	if err != nil {
		t.Fatalf("buildItemDrafts returned error: %v", err)
	}
	if !isBookingOnly(drafts) {
		t.Fatal("expected booking-only cart")
	}

	items = append(items, checkoutItemRequest{ProductID: "64b0c0ffee0000000000aaaa", Quantity: 2})
	drafts, err = buildItemDrafts(items, testLocation(t))
	if err != nil {
		t.Fatalf("buildItemDrafts returned error: %v", err)
	}
	if isBookingOnly(drafts) {
		t.Fatal("expected mixed cart to not be booking-only")
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, method := range []string{"cod", "card", "banking"} {
		if !validPaymentMethod(method) {
			t.Fatalf("expected %q to be accepted", method)
		}
	}
	if validPaymentMethod("crypto") {
		t.Fatal("expected unknown method to be rejected")
	}
}

func TestTotalsMatchTolerance(t *testing.T) {
	// qty 2 x 100000 plus 20000 delivery.
	calculated := 2*100000.0 + 20000.0

	if !totalsMatch(220000, calculated) {
		t.Fatal("exact total should match")
	}
	if !totalsMatch(220001, calculated) {
		t.Fatal("one-unit drift should be tolerated")
	}
	if totalsMatch(225000, calculated) {
		t.Fatal("expected mismatch for 225000")
	}
}

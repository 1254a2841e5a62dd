package handlers

import (
	"testing"
	"time"
)

func TestServiceFootprint(t *testing.T) {
	tests := []struct {
		minutes int
		want    int
	}{
		{30, 1},
		{60, 1},
		{90, 2},
		{120, 2},
		{150, 3},
		{0, 1},
	}
	for _, tt := range tests {
		if got := serviceFootprint(tt.minutes); got != tt.want {
			t.Fatalf("serviceFootprint(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
	}
}

func TestBucketOccupancySpreadsFootprint(t *testing.T) {
	// A 90-minute service starting at 9 occupies buckets 9 and 10.
	bookings := []bucketBooking{
		{Hour: 9, DurationMinutes: 90},
	}
	used := bucketOccupancy(bookings, 8, 18)

	if used[9] != 1 || used[10] != 1 {
		t.Fatalf("expected buckets 9 and 10 occupied, got %v", used)
	}
	if used[11] != 0 {
		t.Fatalf("expected bucket 11 free, got %v", used)
	}
}

func TestBucketOccupancyIgnoresHoursOutsideWindow(t *testing.T) {
	bookings := []bucketBooking{
		{Hour: 17, DurationMinutes: 120},
	}
	used := bucketOccupancy(bookings, 8, 18)

	if used[17] != 1 {
		t.Fatalf("expected bucket 17 occupied, got %v", used)
	}
	if used[18] != 0 {
		t.Fatalf("footprint past closing must be dropped, got %v", used)
	}
}

func TestRemainingPerBucketFloorsAtZero(t *testing.T) {
	// Capacity 2 with two existing bookings at 9: a third request sees 0.
	bookings := []bucketBooking{
		{Hour: 9, DurationMinutes: 60},
		{Hour: 9, DurationMinutes: 60},
		{Hour: 9, DurationMinutes: 60},
	}
	used := bucketOccupancy(bookings, 8, 18)
	slots := remainingPerBucket(used, 2, 8, 18)

	for _, slot := range slots {
		if slot.Hour == 9 && slot.Remaining != 0 {
			t.Fatalf("expected 0 remaining at hour 9, got %d", slot.Remaining)
		}
		if slot.Hour == 8 && slot.Remaining != 2 {
			t.Fatalf("expected full capacity at hour 8, got %d", slot.Remaining)
		}
	}
}

func TestDayBoundsUTC(t *testing.T) {
	loc := testLocation(t)

	from, to, err := dayBoundsUTC("2026-09-01", loc)
	if err != nil {
		t.Fatalf("dayBoundsUTC returned error: %v", err)
	}
	// Local midnight in UTC+7 is 17:00 UTC the previous day.
	wantFrom := time.Date(2026, 8, 31, 17, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Fatalf("expected %v, got %v", wantFrom, from)
	}
	if !to.Equal(wantFrom.Add(24 * time.Hour)) {
		t.Fatalf("expected 24h window, got %v", to)
	}
}

func TestDayBoundsUTCRejectsGarbage(t *testing.T) {
	if _, _, err := dayBoundsUTC("01-09-2026", testLocation(t)); err == nil {
		t.Fatal("expected validation error for bad date format")
	}
}

func TestParseOperatingHour(t *testing.T) {
	if _, err := parseOperatingHour("7", 8, 18); err == nil {
		t.Fatal("expected rejection before opening")
	}
	if _, err := parseOperatingHour("18", 8, 18); err == nil {
		t.Fatal("expected rejection at closing hour")
	}
	hour, err := parseOperatingHour("9", 8, 18)
	if err != nil || hour != 9 {
		t.Fatalf("expected hour 9, got %d (%v)", hour, err)
	}
}

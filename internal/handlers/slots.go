package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"petheaven/internal/config"
	"petheaven/internal/models"
)

const slotDateLayout = "2006-01-02"

// bucketBooking is one existing appointment projected onto the capacity
// grid: its local starting hour and the service duration.
type bucketBooking struct {
	Hour            int
	DurationMinutes int
}

type slotAvailability struct {
	Hour      int `json:"hour"`
	Remaining int `json:"remaining"`
}

// serviceFootprint is how many consecutive hourly buckets an appointment
// occupies: ceil(duration/60), never less than one.
func serviceFootprint(durationMinutes int) int {
	if durationMinutes <= 60 {
		return 1
	}
	return (durationMinutes + 59) / 60
}

// bucketOccupancy counts, per operating hour, how many appointments
// occupy it. A booking starting at h with a 90-minute service occupies h
// and h+1. Buckets outside operating hours are ignored.
func bucketOccupancy(bookings []bucketBooking, openHour, closeHour int) map[int]int {
	used := make(map[int]int)
	for _, b := range bookings {
		footprint := serviceFootprint(b.DurationMinutes)
		for offset := 0; offset < footprint; offset++ {
			hour := b.Hour + offset
			if hour < openHour || hour >= closeHour {
				continue
			}
			used[hour]++
		}
	}
	return used
}

// remainingPerBucket reports capacity minus occupancy for each operating
// hour, floored at zero.
func remainingPerBucket(occupancy map[int]int, capacity, openHour, closeHour int) []slotAvailability {
	slots := make([]slotAvailability, 0, closeHour-openHour)
	for hour := openHour; hour < closeHour; hour++ {
		remaining := capacity - occupancy[hour]
		if remaining < 0 {
			remaining = 0
		}
		slots = append(slots, slotAvailability{Hour: hour, Remaining: remaining})
	}
	return slots
}

// dayBoundsUTC converts a local calendar date into its UTC interval.
func dayBoundsUTC(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(slotDateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, validationError{Message: "invalid date, expected YYYY-MM-DD"}
	}
	start := day.UTC()
	return start, start.Add(24 * time.Hour), nil
}

// activeBookingFilter matches orders whose appointments still hold
// capacity. Cancelled bookings release their slots.
func activeBookingFilter(from, to time.Time) bson.M {
	return bson.M{
		"bookingStatus": bson.M{"$nin": bson.A{nil, models.BookingCancelled}},
		"items.scheduledAt": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	}
}

// collectDayBookings loads every active appointment inside the window and
// resolves each one's service duration.
func collectDayBookings(ctx context.Context, db *mongo.Database, from, to time.Time, loc *time.Location) ([]bucketBooking, error) {
	cursor, err := db.Collection("orders").Find(ctx, activeBookingFilter(from, to))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	type pendingItem struct {
		hour      int
		serviceID primitive.ObjectID
	}
	var pending []pendingItem
	serviceIDs := make(map[primitive.ObjectID]struct{})

	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, err
		}
		for _, item := range order.Items {
			if !item.IsService() || item.ScheduledAt == nil {
				continue
			}
			at := *item.ScheduledAt
			if at.Before(from) || !at.Before(to) {
				continue
			}
			pending = append(pending, pendingItem{
				hour:      at.In(loc).Hour(),
				serviceID: *item.ServiceID,
			})
			serviceIDs[*item.ServiceID] = struct{}{}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	durations, err := serviceDurations(ctx, db, serviceIDs)
	if err != nil {
		return nil, err
	}

	bookings := make([]bucketBooking, 0, len(pending))
	for _, p := range pending {
		bookings = append(bookings, bucketBooking{
			Hour:            p.hour,
			DurationMinutes: durations[p.serviceID],
		})
	}
	return bookings, nil
}

func serviceDurations(ctx context.Context, db *mongo.Database, ids map[primitive.ObjectID]struct{}) (map[primitive.ObjectID]int, error) {
	durations := make(map[primitive.ObjectID]int, len(ids))
	if len(ids) == 0 {
		return durations, nil
	}

	idList := make([]primitive.ObjectID, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}

	cursor, err := db.Collection("services").Find(ctx, bson.M{"_id": bson.M{"$in": idList}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var svc models.SpaService
		if err := cursor.Decode(&svc); err != nil {
			return nil, err
		}
		durations[svc.ID] = svc.DurationMinutes
	}
	return durations, cursor.Err()
}

// countBucketBookings counts appointments starting inside one hourly
// bucket. Used by the lightweight single-slot check and re-run inside the
// checkout transaction to close the read-then-commit race.
func countBucketBookings(ctx context.Context, db *mongo.Database, bucketStart time.Time) (int, error) {
	cursor, err := db.Collection("orders").Find(ctx, activeBookingFilter(bucketStart, bucketStart.Add(time.Hour)))
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return 0, err
		}
		for _, item := range order.Items {
			if !item.IsService() || item.ScheduledAt == nil {
				continue
			}
			at := *item.ScheduledAt
			if !at.Before(bucketStart) && at.Before(bucketStart.Add(time.Hour)) {
				count++
			}
		}
	}
	return count, cursor.Err()
}

/* =========================
   SLOT ENDPOINTS
========================= */

func GetSlotAvailability(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/slots"
		defer handlePanic(c, route)

		cfg := config.AppEnv
		loc, err := time.LoadLocation(cfg.BookingTimezone)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "timezone misconfigured")
			return
		}

		from, to, err := dayBoundsUTC(c.Query("date"), loc)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		bookings, err := collectDayBookings(ctx, db, from, to, loc)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not load bookings")
			return
		}

		occupancy := bucketOccupancy(bookings, cfg.OpenHour, cfg.CloseHour)
		slots := remainingPerBucket(occupancy, cfg.SlotCapacity, cfg.OpenHour, cfg.CloseHour)

		respondOK(c, http.StatusOK, "slot availability", slots)
	}
}

func GetSingleSlotRemaining(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/slots/remaining"
		defer handlePanic(c, route)

		cfg := config.AppEnv
		loc, err := time.LoadLocation(cfg.BookingTimezone)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "timezone misconfigured")
			return
		}

		hour, err := parseOperatingHour(c.Query("hour"), cfg.OpenHour, cfg.CloseHour)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		from, _, err := dayBoundsUTC(c.Query("date"), loc)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := countBucketBookings(ctx, db, from.Add(time.Duration(hour)*time.Hour))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not count bookings")
			return
		}

		remaining := cfg.SlotCapacity - count
		if remaining < 0 {
			remaining = 0
		}

		respondOK(c, http.StatusOK, "remaining capacity", slotAvailability{Hour: hour, Remaining: remaining})
	}
}

func parseOperatingHour(raw string, openHour, closeHour int) (int, error) {
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < openHour || hour >= closeHour {
		return 0, validationError{Message: "hour outside operating window"}
	}
	return hour, nil
}

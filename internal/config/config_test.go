package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DB_NAME", "SLOT_CAPACITY", "OPEN_HOUR", "CLOSE_HOUR",
		"GRACE_PERIOD", "SWEEP_INTERVAL", "CANCEL_LEAD_TIME",
		"KAFKA_BROKERS", "BOOKING_TIMEZONE",
	} {
		t.Setenv(key, "")
	}

	Load()

	if AppEnv.DBName != "petheaven" {
		t.Fatalf("expected default db name, got %q", AppEnv.DBName)
	}
	if AppEnv.SlotCapacity != 5 {
		t.Fatalf("expected slot capacity 5, got %d", AppEnv.SlotCapacity)
	}
	if AppEnv.OpenHour != 8 || AppEnv.CloseHour != 18 {
		t.Fatalf("expected operating hours 8-18, got %d-%d", AppEnv.OpenHour, AppEnv.CloseHour)
	}
	if AppEnv.GracePeriod != 15*time.Minute {
		t.Fatalf("expected 15m grace period, got %v", AppEnv.GracePeriod)
	}
	if AppEnv.SweepInterval != time.Minute {
		t.Fatalf("expected 1m sweep interval, got %v", AppEnv.SweepInterval)
	}
	if AppEnv.CancelLeadTime != 12*time.Hour {
		t.Fatalf("expected 12h cancel lead time, got %v", AppEnv.CancelLeadTime)
	}
	if AppEnv.BookingTimezone != "Asia/Ho_Chi_Minh" {
		t.Fatalf("expected default timezone, got %q", AppEnv.BookingTimezone)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SLOT_CAPACITY", "2")
	t.Setenv("GRACE_PERIOD", "30")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	Load()

	if AppEnv.SlotCapacity != 2 {
		t.Fatalf("expected slot capacity 2, got %d", AppEnv.SlotCapacity)
	}
	if AppEnv.GracePeriod != 30*time.Minute {
		t.Fatalf("expected 30m grace period, got %v", AppEnv.GracePeriod)
	}
	if len(AppEnv.KafkaBrokers) != 2 || AppEnv.KafkaBrokers[1] != "broker-2:9092" {
		t.Fatalf("expected two trimmed brokers, got %v", AppEnv.KafkaBrokers)
	}
}

func TestGetDurationEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "soon")

	if got := getDurationEnv("SWEEP_INTERVAL", 1, time.Minute); got != time.Minute {
		t.Fatalf("expected fallback 1m, got %v", got)
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string

	RedisAddr string
	RedisDB   int

	// Booking events: Redis Stream outbox, relayed to Kafka.
	BookingEventStream   string
	BookingEventGroup    string
	BookingEventConsumer string
	KafkaBrokers         []string
	KafkaTopic           string
	KafkaGroupID         string

	// Appointment capacity model.
	SlotCapacity    int
	OpenHour        int
	CloseHour       int
	BookingTimezone string

	GracePeriod    time.Duration
	SweepInterval  time.Duration
	CancelLeadTime time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", ""),
		DBName:    getEnvOrDefault("DB_NAME", "petheaven"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getIntEnv("REDIS_DB", 0),

		BookingEventStream:   getEnvOrDefault("BOOKING_EVENT_STREAM", "petheaven:booking_events"),
		BookingEventGroup:    getEnvOrDefault("BOOKING_EVENT_GROUP", "booking-relay-group"),
		BookingEventConsumer: getEnvOrDefault("BOOKING_EVENT_CONSUMER", "booking-relay-1"),
		KafkaBrokers:         splitCSV(getEnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:           getEnvOrDefault("KAFKA_TOPIC", "petheaven-booking-events"),
		KafkaGroupID:         getEnvOrDefault("KAFKA_GROUP_ID", "petheaven-notifier"),

		SlotCapacity:    getIntEnv("SLOT_CAPACITY", 5),
		OpenHour:        getIntEnv("OPEN_HOUR", 8),
		CloseHour:       getIntEnv("CLOSE_HOUR", 18),
		BookingTimezone: getEnvOrDefault("BOOKING_TIMEZONE", "Asia/Ho_Chi_Minh"),

		GracePeriod:    getDurationEnv("GRACE_PERIOD", 15, time.Minute),
		SweepInterval:  getDurationEnv("SWEEP_INTERVAL", 1, time.Minute),
		CancelLeadTime: getDurationEnv("CANCEL_LEAD_TIME", 12, time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"

	"petheaven/internal/config"
	"petheaven/internal/database"
	"petheaven/internal/handlers"
	"petheaven/internal/middleware"
	"petheaven/internal/notify"
	"petheaven/internal/queue"
	"petheaven/internal/sweeper"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Printf("coupon index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}

	rdb := rd.NewClient(&rd.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	outbox := queue.NewOutbox(rdb, cfg.BookingEventStream)
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	relay := queue.NewRelay(rdb, producer, cfg.BookingEventStream, cfg.BookingEventGroup, cfg.BookingEventConsumer)
	notifier := queue.NewNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, notify.LogDispatcher{})
	defer notifier.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go relay.Run(ctx)
	go notifier.Run(ctx)

	sweep := sweeper.New(db, outbox, cfg.GracePeriod, cfg.SweepInterval)
	sweep.Start(ctx)
	defer sweep.Stop()

	r := gin.Default()

	r.GET("/healthz", handlers.Health(db))

	api := r.Group("/api")
	{
		api.POST("/orders", handlers.CreateOrder(db, cfg.JWTSecret, outbox))
		api.GET("/slots", handlers.GetSlotAvailability(db))
		api.GET("/slots/remaining", handlers.GetSingleSlotRemaining(db))
		api.POST("/orders/:id/items/:itemId/cancel", handlers.CancelBooking(db, outbox))
		api.GET("/orders/mine", middleware.UserAuth(cfg.JWTSecret), handlers.ListMyBookings(db))
	}

	admin := api.Group("/admin")
	admin.Use(middleware.StaffAuth(cfg.JWTSecret))
	{
		admin.GET("/orders/pending", handlers.ListPendingOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.PUT("/orders/:id/booking-status", handlers.UpdateBookingStatus(db, outbox))
		admin.PUT("/orders/:id/items/:itemId/real-price", handlers.UpdateRealPrice(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/accounts"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/ticket"
	"github.com/Domenick1991/flightbooking/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Printf("WARNING: kafka unavailable, events will be retried per publish: %v", err)
	}

	// The sweep never takes fare locks, so the booking service runs without a cache.
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewFlightRepository(pool),
		nil,
		producer,
		ticket.NewRenderer(""),
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	accountService := accounts.NewAccountService(
		repository.NewAccountRepository(pool),
		repository.NewOTPRepository(pool),
		nil,
		nil,
		producer,
	)

	sched, err := worker.NewScheduler(ctx, cfg.Worker, bookingService, accountService)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	sender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		log.Fatalf("smtp: %v", err)
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	log.Printf("worker started, consuming %s", cfg.Kafka.NotificationsTopic)
	err = worker.Run(ctx, sched, func(ctx context.Context) error {
		return consumer.Consume(ctx, worker.NotificationHandler(sender))
	})
	if err != nil {
		log.Printf("ERROR: %v", err)
	}
}

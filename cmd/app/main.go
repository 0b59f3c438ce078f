package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/accounts"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/payment"
	"github.com/Domenick1991/flightbooking/internal/ticket"
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

	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err := tokens.Validate(); err != nil {
		log.Fatalf("auth config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.AirportsCacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Printf("WARNING: kafka unavailable, events will be retried per publish: %v", err)
	}

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	accountService := accounts.NewAccountService(
		repository.NewAccountRepository(pool),
		repository.NewOTPRepository(pool),
		tokens,
		redisCache,
		producer,
		accounts.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		accounts.WithOTPTTL(time.Duration(cfg.Auth.OTPTTLMinutes)*time.Minute),
	)
	flightService := flights.NewFlightService(flightRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		redisCache,
		producer,
		ticket.NewRenderer(""),
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLockTTL(time.Duration(cfg.Booking.LockTTLSeconds)*time.Second),
		booking.WithMaxPassengers(cfg.Booking.MaxPassengers),
	)
	paymentService := payment.NewPaymentService(
		bookingRepo,
		repository.NewPaymentRepository(pool),
		producer,
		cfg.Kafka.BookingEventsTopic,
		payment.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	deps := bootstrap.Dependencies{
		Services: api.Services{
			Accounts: accountService,
			Flights:  flightService,
			Bookings: bookingService,
			Payments: paymentService,
		},
		Tokens:      tokens,
		Revocations: redisCache,
	}
	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

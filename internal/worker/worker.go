package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/go-co-op/gocron/v2"
	kafkaGo "github.com/segmentio/kafka-go"
)

type BookingExpirer interface {
	ExpireUnpaid(ctx context.Context) ([]domain.Booking, error)
}

type CodePurger interface {
	PurgeExpiredCodes(ctx context.Context) (int64, error)
}

type Mailer interface {
	Send(ctx context.Context, event kafka.NotificationEvent) error
}

// NewScheduler registers the periodic maintenance jobs. The caller starts and
// shuts down the returned scheduler.
func NewScheduler(ctx context.Context, cfg config.WorkerConfig, bookings BookingExpirer, codes CodePurger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithStopTimeout(10 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	jobs := []struct {
		name     string
		interval time.Duration
		run      func()
	}{
		{
			name:     "expire-unpaid-bookings",
			interval: time.Duration(cfg.ExpirationSweepMinutes) * time.Minute,
			run:      func() { ExpireBookings(ctx, bookings) },
		},
		{
			name:     "purge-expired-codes",
			interval: time.Duration(cfg.OTPPurgeMinutes) * time.Minute,
			run:      func() { PurgeCodes(ctx, codes) },
		},
	}

	for _, job := range jobs {
		if _, err := sched.NewJob(
			gocron.DurationJob(job.interval),
			gocron.NewTask(job.run),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		); err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}
	return sched, nil
}

func ExpireBookings(ctx context.Context, bookings BookingExpirer) {
	expired, err := bookings.ExpireUnpaid(ctx)
	if err != nil {
		log.Printf("ERROR: expire bookings: %v", err)
		return
	}
	if len(expired) > 0 {
		log.Printf("expired %d bookings", len(expired))
	}
}

func PurgeCodes(ctx context.Context, codes CodePurger) {
	purged, err := codes.PurgeExpiredCodes(ctx)
	if err != nil {
		log.Printf("ERROR: purge verification codes: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("purged %d expired verification codes", purged)
	}
}

// NotificationHandler mails every notification read from the topic.
// Undecodable messages are skipped so one bad record does not stall the group.
func NotificationHandler(mailer Mailer) func(context.Context, kafkaGo.Message) error {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("WARNING: decode notification at offset %d: %v", msg.Offset, err)
			return nil
		}
		if err := mailer.Send(ctx, event); err != nil {
			log.Printf("ERROR: deliver %s notification: %v", event.Type, err)
		}
		return nil
	}
}

// Run starts sched and consume, then blocks until ctx is done. A consumer
// failure is logged and leaves the scheduled jobs running.
func Run(ctx context.Context, sched gocron.Scheduler, consume func(context.Context) error) error {
	sched.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consume(ctx); err != nil {
			log.Printf("ERROR: consumer stopped, scheduled jobs keep running: %v", err)
		}
	}()

	<-ctx.Done()
	<-done
	log.Printf("worker shutting down")
	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type BookingUseCase interface {
	Review(ctx context.Context, input ReviewInput) (*Review, error)
	CreateBookings(ctx context.Context, accountID int64, form Form) (*Checkout, error)
	ListForAccount(ctx context.Context, accountID int64) ([]domain.Booking, error)
	RequestCancellation(ctx context.Context, accountID, bookingID int64) (*domain.Booking, error)
	ListPendingCancellations(ctx context.Context) ([]domain.Booking, error)
	ApproveCancellation(ctx context.Context, bookingID int64) (*domain.Booking, error)
	RejectCancellation(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ExpireUnpaid(ctx context.Context) ([]domain.Booking, error)
	Ticket(ctx context.Context, accountID, bookingID int64) (*Ticket, error)
	TicketByID(ctx context.Context, bookingID int64) (*Ticket, error)
}

// Cache serializes checkouts on the same fare class.
type Cache interface {
	AcquireFareLock(ctx context.Context, fareID int64, ttl time.Duration) (bool, error)
	ReleaseFareLock(ctx context.Context, fareID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type TicketRenderer interface {
	Render(booking *domain.Booking) ([]byte, error)
}

// Ticket is a rendered, printable boarding document.
type Ticket struct {
	Filename string
	Content  []byte
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              Cache
	producer           Producer
	renderer           TicketRenderer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	lockTTL            time.Duration
	lockRetries        int
	lockBackoff        time.Duration
	maxPassengers      int
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.lockTTL = ttl
	}
}

func WithLockRetry(retries int, backoff time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.lockRetries = retries
		s.lockBackoff = backoff
	}
}

func WithMaxPassengers(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.maxPassengers = n
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	renderer TicketRenderer,
	bookingTopic string,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings:     bookings,
		flights:      flights,
		cache:        cache,
		producer:     producer,
		renderer:     renderer,
		bookingTopic: bookingTopic,
		holdTTL:      holdTTL,
		lockTTL:      10 * time.Second,
		lockRetries:  5,
		lockBackoff:  50 * time.Millisecond,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) ListForAccount(ctx context.Context, accountID int64) ([]domain.Booking, error) {
	return s.bookings.ListByAccount(ctx, accountID)
}

// RequestCancellation puts a paid booking back into the admin approval queue.
func (s *BookingService) RequestCancellation(ctx context.Context, accountID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.owned(ctx, accountID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusConfirmed || booking.Flight.Departed(s.now()) {
		return nil, ErrNotCancellable
	}

	if err := s.bookings.TransitionStatus(ctx, booking.ID, domain.BookingStatusConfirmed, domain.BookingStatusPendingCancellation); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrNotCancellable
		}
		return nil, fmt.Errorf("request cancellation: %w", err)
	}
	booking.Status = domain.BookingStatusPendingCancellation

	s.publish(ctx, kafka.EventCancellationRequested, booking)
	s.notify(ctx, kafka.EventCancellationRequested, booking.AccountEmail, "Cancellation requested",
		fmt.Sprintf("We received your cancellation request for booking %s. You will be notified once it is reviewed.", booking.Reference()))
	return booking, nil
}

func (s *BookingService) ListPendingCancellations(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListPendingCancellations(ctx)
}

func (s *BookingService) ApproveCancellation(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.pending(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.CancelAndRelease(ctx, booking.ID, domain.BookingStatusPendingCancellation); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("approve cancellation: %w", err)
	}
	booking.Status = domain.BookingStatusCanceled

	s.publish(ctx, kafka.EventCancellationApproved, booking)
	s.notify(ctx, kafka.EventCancellationApproved, booking.AccountEmail, "Cancellation approved",
		fmt.Sprintf("Your booking %s has been cancelled.", booking.Reference()))
	return booking, nil
}

func (s *BookingService) RejectCancellation(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.pending(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.TransitionStatus(ctx, booking.ID, domain.BookingStatusPendingCancellation, domain.BookingStatusDeniedCancellation); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("reject cancellation: %w", err)
	}
	booking.Status = domain.BookingStatusDeniedCancellation

	s.publish(ctx, kafka.EventCancellationRejected, booking)
	s.notify(ctx, kafka.EventCancellationRejected, booking.AccountEmail, "Cancellation rejected",
		fmt.Sprintf("Your cancellation request for booking %s was rejected. The booking stays valid.", booking.Reference()))
	return booking, nil
}

// ExpireUnpaid cancels checkouts that were never paid within the hold period.
func (s *BookingService) ExpireUnpaid(ctx context.Context) ([]domain.Booking, error) {
	deadline := s.now().Add(-s.holdTTL)
	expired, err := s.bookings.ExpireUnpaidBefore(ctx, deadline)
	if err != nil {
		return nil, fmt.Errorf("expire unpaid bookings: %w", err)
	}

	for i := range expired {
		booking := &expired[i]
		s.publish(ctx, kafka.EventBookingExpired, booking)
		s.notify(ctx, kafka.EventBookingExpired, booking.AccountEmail, "Booking expired",
			fmt.Sprintf("Booking %s was not paid in time and has been released.", booking.Reference()))
	}
	if len(expired) > 0 {
		log.Printf("Expired %d unpaid bookings", len(expired))
	}
	return expired, nil
}

func (s *BookingService) Ticket(ctx context.Context, accountID, bookingID int64) (*Ticket, error) {
	booking, err := s.owned(ctx, accountID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.render(booking)
}

// TicketByID renders any printable booking, for back-office use.
func (s *BookingService) TicketByID(ctx context.Context, bookingID int64) (*Ticket, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrTicketInvalid
	}
	if err != nil {
		return nil, err
	}
	return s.render(booking)
}

func (s *BookingService) render(booking *domain.Booking) (*Ticket, error) {
	// A rejected cancellation leaves a paid, flyable booking.
	if booking.Status != domain.BookingStatusConfirmed && booking.Status != domain.BookingStatusDeniedCancellation {
		return nil, ErrTicketInvalid
	}
	content, err := s.renderer.Render(booking)
	if err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return &Ticket{Filename: "ticket-" + booking.Reference() + ".pdf", Content: content}, nil
}

// owned loads a booking and hides bookings of other accounts.
func (s *BookingService) owned(ctx context.Context, accountID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrTicketInvalid
	}
	if err != nil {
		return nil, err
	}
	if booking.AccountID != accountID {
		return nil, ErrTicketInvalid
	}
	return booking, nil
}

func (s *BookingService) pending(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPendingCancellation || !booking.Paid {
		return nil, ErrNotPending
	}
	return booking, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		AccountID:    booking.AccountID,
		Email:        booking.AccountEmail,
		FlightNumber: booking.Flight.FlightNumber,
		Status:       string(booking.Status),
		Amount:       booking.Amount(),
		At:           s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, strconv.FormatInt(booking.ID, 10), event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for booking %d: %v", eventType, booking.ID, err)
	}
}

func (s *BookingService) notify(ctx context.Context, eventType, email, subject, body string) {
	if s.producer == nil || s.notificationsTopic == "" || email == "" {
		return
	}
	event := kafka.NotificationEvent{Type: eventType, Email: email, Subject: subject, Body: body}
	if err := s.producer.Publish(ctx, s.notificationsTopic, email, event); err != nil {
		log.Printf("WARNING: Failed to publish notification to %s: %v", email, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)

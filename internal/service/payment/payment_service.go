package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/validation"
	"github.com/google/uuid"
)

const (
	minExpiryYear    = 2024
	maxExpiryYear    = 2060
	maxCardNumberLen = 20
)

var (
	ErrTicketNotExist      = domain.NewValidationError("This ticket is not exist.")
	ErrTicketInvalid       = domain.NewValidationError("This ticket is not valid.")
	ErrNoCardNumber        = domain.NewValidationError("Please input your card number.")
	ErrCardNumberNotDigits = domain.NewValidationError("Your card number is not valid. It must contain numbers only.")
	ErrCardNumberTooLong   = domain.NewValidationError("Your card number is not valid. Its length must be less than 20.")
	ErrNoCardHolder        = domain.NewValidationError("Please input your card holder's name.")
	ErrInvalidCardHolder   = domain.NewValidationError("Your card holder's name is not valid.")
	ErrNoExpMonth          = domain.NewValidationError("Please select your card's expire month.")
	ErrInvalidExpMonth     = domain.NewValidationError("Your expire month is not valid.")
	ErrNoExpYear           = domain.NewValidationError("Please select your card's expire year.")
	ErrInvalidExpYear      = domain.NewValidationError("Your expire year is not valid.")
	ErrCardExpired         = domain.NewValidationError("Your card is expired. Please choose another card.")
	ErrNoCardType          = domain.NewValidationError("Please select your card's type.")
	ErrInvalidCardType     = domain.NewValidationError("Your card's type is not valid.")
)

type PaymentUseCase interface {
	Process(ctx context.Context, accountID int64, input ProcessInput) (*Receipt, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ProcessInput struct {
	Ticket1        string `json:"ticket1" form:"ticket1" binding:"required,number"`
	Ticket2        string `json:"ticket2" form:"ticket2" binding:"omitempty,number"`
	CardNumber     string `json:"cardNumber" form:"cardNumber"`
	CardHolderName string `json:"cardHolderName" form:"cardHolderName"`
	ExpMonth       string `json:"expMonth" form:"expMonth"`
	ExpYear        string `json:"expYear" form:"expYear"`
	CardType       string `json:"cardType" form:"cardType"`
}

type Receipt struct {
	TransactionID string           `json:"transaction_id"`
	Card          string           `json:"card"`
	Total         int64            `json:"total"`
	Bookings      []domain.Booking `json:"bookings"`
	Payments      []domain.Payment `json:"payments"`
}

type PaymentService struct {
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
	newTransactionID   func() string
}

type PaymentServiceOption func(*PaymentService)

func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) PaymentServiceOption {
	return func(s *PaymentService) {
		s.now = now
	}
}

func WithTransactionIDs(gen func() string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.newTransactionID = gen
	}
}

func NewPaymentService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	producer Producer,
	bookingTopic string,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		bookings:         bookings,
		payments:         payments,
		producer:         producer,
		bookingTopic:     bookingTopic,
		now:              time.Now,
		newTransactionID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process pays every booking of a checkout with one card. Each payment row
// carries the checkout total.
func (s *PaymentService) Process(ctx context.Context, accountID int64, input ProcessInput) (*Receipt, error) {
	bookings, err := s.payableBookings(ctx, accountID, input.Ticket1, input.Ticket2)
	if err != nil {
		return nil, err
	}

	now := s.now()
	card, err := parseCard(input, now)
	if err != nil {
		return nil, err
	}
	card.AccountID = accountID

	ids := make([]int64, 0, len(bookings))
	var total int64
	for _, b := range bookings {
		ids = append(ids, b.ID)
		total += b.Amount()
	}

	txID := s.newTransactionID()
	payments, err := s.payments.PayCheckout(ctx, card, ids, total, txID, now)
	if errors.Is(err, domain.ErrConflict) {
		return nil, ErrTicketInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("pay checkout: %w", err)
	}

	refs := make([]string, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		b.Status = domain.BookingStatusConfirmed
		b.Paid = true
		refs = append(refs, b.Reference())
		s.publish(ctx, b, now)
	}
	s.notify(ctx, bookings[0].AccountEmail, "Payment received",
		fmt.Sprintf("We received your payment of %d for bookings %s (transaction %s). Your tickets are ready to print.",
			total, strings.Join(refs, ", "), txID))

	return &Receipt{
		TransactionID: txID,
		Card:          card.Masked(),
		Total:         total,
		Bookings:      bookings,
		Payments:      payments,
	}, nil
}

func (s *PaymentService) payableBookings(ctx context.Context, accountID int64, first, second string) ([]domain.Booking, error) {
	raw := []string{strings.TrimSpace(first)}
	if v := strings.TrimSpace(second); v != "" {
		raw = append(raw, v)
	}

	seen := make(map[int64]bool, len(raw))
	bookings := make([]domain.Booking, 0, len(raw))
	for _, r := range raw {
		id, ok := validation.ParsePositiveInt(r)
		if !ok {
			return nil, ErrTicketNotExist
		}
		b, err := s.bookings.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTicketNotExist
		}
		if err != nil {
			return nil, fmt.Errorf("lookup booking: %w", err)
		}
		if b.AccountID != accountID || b.Status != domain.BookingStatusPendingCancellation || b.Paid || seen[b.ID] {
			return nil, ErrTicketInvalid
		}
		seen[b.ID] = true
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

func parseCard(input ProcessInput, now time.Time) (*domain.Card, error) {
	number := strings.TrimSpace(input.CardNumber)
	holder := strings.TrimSpace(input.CardHolderName)
	monthRaw := strings.TrimSpace(input.ExpMonth)
	yearRaw := strings.TrimSpace(input.ExpYear)
	cardType := strings.TrimSpace(input.CardType)

	if number == "" {
		return nil, ErrNoCardNumber
	}
	if !validation.IsDigits(number) {
		return nil, ErrCardNumberNotDigits
	}
	if len(number) > maxCardNumberLen {
		return nil, ErrCardNumberTooLong
	}

	if holder == "" {
		return nil, ErrNoCardHolder
	}
	if !validation.IsPersonName(holder) {
		return nil, ErrInvalidCardHolder
	}

	if monthRaw == "" {
		return nil, ErrNoExpMonth
	}
	month, err := strconv.Atoi(monthRaw)
	if err != nil || month < 1 || month > 12 {
		return nil, ErrInvalidExpMonth
	}

	if yearRaw == "" {
		return nil, ErrNoExpYear
	}
	year, err := strconv.Atoi(yearRaw)
	if err != nil || year < minExpiryYear || year > maxExpiryYear {
		return nil, ErrInvalidExpYear
	}

	// A card is valid through the last day of its expiry month.
	if year < now.Year() || (year == now.Year() && time.Month(month) < now.Month()) {
		return nil, ErrCardExpired
	}

	if cardType == "" {
		return nil, ErrNoCardType
	}
	if !validation.IsCardType(cardType) {
		return nil, ErrInvalidCardType
	}

	return &domain.Card{
		CardNumber:     number,
		CardholderName: holder,
		ExpiryMonth:    month,
		ExpiryYear:     year,
		CardType:       cardType,
	}, nil
}

func (s *PaymentService) publish(ctx context.Context, booking *domain.Booking, at time.Time) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         kafka.EventBookingPaid,
		BookingID:    booking.ID,
		AccountID:    booking.AccountID,
		Email:        booking.AccountEmail,
		FlightNumber: booking.Flight.FlightNumber,
		Status:       string(booking.Status),
		Amount:       booking.Amount(),
		At:           at.UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, strconv.FormatInt(booking.ID, 10), event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for booking %d: %v", event.Type, booking.ID, err)
	}
}

func (s *PaymentService) notify(ctx context.Context, email, subject, body string) {
	if s.producer == nil || s.notificationsTopic == "" || email == "" {
		return
	}
	event := kafka.NotificationEvent{Type: kafka.EventBookingPaid, Email: email, Subject: subject, Body: body}
	if err := s.producer.Publish(ctx, s.notificationsTopic, email, event); err != nil {
		log.Printf("WARNING: Failed to publish notification to %s: %v", email, err)
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)

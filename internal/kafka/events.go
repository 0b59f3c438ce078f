package kafka

import "time"

const (
	EventBookingCreated        = "booking_created"
	EventBookingPaid           = "booking_paid"
	EventCancellationRequested = "cancellation_requested"
	EventCancellationApproved  = "cancellation_approved"
	EventCancellationRejected  = "cancellation_rejected"
	EventBookingExpired        = "booking_expired"
	EventOTPIssued             = "otp_issued"
)

type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    int64     `json:"booking_id"`
	AccountID    int64     `json:"account_id"`
	Email        string    `json:"email"`
	FlightNumber string    `json:"flight_number"`
	Status       string    `json:"status"`
	Amount       int64     `json:"amount"`
	At           time.Time `json:"at"`
}

// NotificationEvent is a ready-to-send message for the mail worker.
type NotificationEvent struct {
	Type    string `json:"type"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed           BookingStatus = "Confirmed"
	BookingStatusCanceled            BookingStatus = "Canceled"
	BookingStatusPendingCancellation BookingStatus = "PendingCancellation"
	BookingStatusDeniedCancellation  BookingStatus = "DeniedCancellation"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCanceled, BookingStatusPendingCancellation, BookingStatusDeniedCancellation:
		return true
	}
	return false
}

type Booking struct {
	ID                 int64         `json:"booking_id"`
	AccountID          int64         `json:"account_id"`
	FlightTicketTypeID int64         `json:"flight_ticket_type_id"`
	SeatNumber         string        `json:"seat_number"`
	Status             BookingStatus `json:"status"`
	BookedAt           time.Time     `json:"booked_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Flight     Flight      `json:"flight"`
	TicketType string      `json:"ticket_type"`
	Price      int64       `json:"price"`
	Paid       bool        `json:"paid"`
	Passengers []Passenger `json:"passengers,omitempty"`
	// PassengerCount is loaded even when Passengers is not.
	PassengerCount int    `json:"passenger_count"`
	AccountEmail   string `json:"-"`
}

func (b *Booking) Amount() int64 {
	return b.Price * int64(b.PassengerCount)
}

func (b *Booking) Reference() string {
	return fmt.Sprintf("%s-%06d", b.Flight.FlightNumber, b.ID)
}

type Passenger struct {
	ID                  int64      `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Gender              string     `json:"gender"`
	DateOfBirth         time.Time  `json:"date_of_birth"`
	Nationality         string     `json:"nationality"`
	PassportNumber      string     `json:"passport_number,omitempty"`
	PassportFromCountry string     `json:"passport_from_country,omitempty"`
	PassportExpiry      *time.Time `json:"passport_expiry,omitempty"`
}

// CheckoutLeg is one flight of a checkout in a chosen fare class.
type CheckoutLeg struct {
	Flight Flight
	Fare   FlightTicketType
}

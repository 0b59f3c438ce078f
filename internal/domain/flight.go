package domain

import "time"

type Airport struct {
	Code    string `json:"airport_code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type Flight struct {
	ID               int64     `json:"flight_id"`
	FlightNumber     string    `json:"flight_number"`
	Airline          string    `json:"airline"`
	DepartureAirport string    `json:"departure_airport"`
	ArrivalAirport   string    `json:"arrival_airport"`
	DepartureCountry string    `json:"departure_country,omitempty"`
	ArrivalCountry   string    `json:"arrival_country,omitempty"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	BasePrice        int64     `json:"base_price"`
}

// International reports whether the flight crosses a border.
func (f *Flight) International() bool {
	return f.DepartureCountry != "" && f.ArrivalCountry != "" && f.DepartureCountry != f.ArrivalCountry
}

// Departed reports whether the flight has already left at now.
func (f *Flight) Departed(now time.Time) bool {
	return !f.DepartureTime.After(now)
}

// Reverses reports whether f flies the opposite route of other.
func (f *Flight) Reverses(other *Flight) bool {
	return f.DepartureAirport == other.ArrivalAirport && f.ArrivalAirport == other.DepartureAirport
}

type TicketType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FlightTicketType is a fare class priced and seat-limited per flight.
type FlightTicketType struct {
	ID             int64  `json:"id"`
	FlightID       int64  `json:"flight_id"`
	TicketTypeID   int64  `json:"ticket_type_id"`
	TicketTypeName string `json:"ticket_type"`
	Price          int64  `json:"price"`
	AvailableSeats int    `json:"available_seats"`
}

type FlightDetail struct {
	Flight Flight             `json:"flight"`
	Fares  []FlightTicketType `json:"fares"`
}

// FareOffer is a bookable flight in a given fare class.
type FareOffer struct {
	Flight Flight           `json:"flight"`
	Fare   FlightTicketType `json:"fare"`
}

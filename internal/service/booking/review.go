package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/validation"
)

type ReviewInput struct {
	DepartureFlightID string `form:"d_flight_id"`
	ReturnFlightID    string `form:"r_flight_id"`
	TicketType        string `form:"flight_ticket_type"`
	NumPassengers     string `form:"num_passengers"`
}

// Review is a priced selection shown before passenger details are entered.
type Review struct {
	Departure     domain.FareOffer  `json:"departure"`
	Return        *domain.FareOffer `json:"return,omitempty"`
	Passengers    int               `json:"num_passengers"`
	International bool              `json:"international"`
	Total         int64             `json:"total"`
}

func (s *BookingService) Review(ctx context.Context, input ReviewInput) (*Review, error) {
	departureRaw := strings.TrimSpace(input.DepartureFlightID)
	returnRaw := strings.TrimSpace(input.ReturnFlightID)
	ticketType := strings.TrimSpace(input.TicketType)
	passengersRaw := strings.TrimSpace(input.NumPassengers)

	if departureRaw == "" || ticketType == "" || passengersRaw == "" {
		return nil, ErrTooFewInformation
	}

	departure, err := s.flightByRawID(ctx, departureRaw)
	if err != nil {
		return nil, err
	}
	var ret *domain.Flight
	if returnRaw != "" {
		if ret, err = s.flightByRawID(ctx, returnRaw); err != nil {
			return nil, err
		}
	}

	n, ok := validation.ParsePositiveInt(passengersRaw)
	if !ok {
		return nil, ErrInvalidPassengers
	}
	passengers := int(n)

	review := &Review{Passengers: passengers}
	legs := []*domain.Flight{departure}
	if ret != nil {
		legs = append(legs, ret)
	}
	offers := make([]domain.FareOffer, 0, len(legs))
	for _, f := range legs {
		fare, err := s.flights.GetFare(ctx, f.ID, ticketType)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidSeatType
		}
		if err != nil {
			return nil, fmt.Errorf("lookup fare: %w", err)
		}
		offers = append(offers, domain.FareOffer{Flight: *f, Fare: *fare})
	}

	for _, o := range offers {
		if passengers > o.Fare.AvailableSeats || (s.maxPassengers > 0 && passengers > s.maxPassengers) {
			return nil, ErrTooManyPassengers
		}
	}
	now := s.now()
	for _, f := range legs {
		if f.Departed(now) {
			return nil, ErrPastFlight
		}
	}
	if ret != nil {
		if !ret.Reverses(departure) {
			return nil, ErrAirportsMismatch
		}
		if !ret.DepartureTime.After(departure.DepartureTime) {
			return nil, ErrReturnTooSoon
		}
	}

	review.Departure = offers[0]
	if len(offers) > 1 {
		review.Return = &offers[1]
	}
	for _, o := range offers {
		review.Total += o.Fare.Price * int64(passengers)
		review.International = review.International || o.Flight.International()
	}
	return review, nil
}

func (s *BookingService) flightByRawID(ctx context.Context, raw string) (*domain.Flight, error) {
	id, ok := validation.ParsePositiveInt(raw)
	if !ok {
		return nil, ErrInvalidFlightID
	}
	flight, err := s.flights.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidFlightID
	}
	if err != nil {
		return nil, fmt.Errorf("lookup flight: %w", err)
	}
	return flight, nil
}

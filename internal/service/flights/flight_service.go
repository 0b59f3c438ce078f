package flights

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/validation"
)

const (
	TripOneWay = "oneway"
	TripRound  = "round"
)

var (
	ErrInvalidPassengers = domain.NewValidationError("The number of passengers is not valid.")
	ErrFillAllFields     = domain.NewValidationError("Fill in all the fields to search for your flights.")
	ErrNoDeparture       = domain.NewValidationError("Please select a departure airport.")
	ErrNoDestination     = domain.NewValidationError("Please select a destination airport.")
	ErrNoDepartureDate   = domain.NewValidationError("Please select a departure date.")
	ErrNoSeatType        = domain.NewValidationError("Please select a seat type.")
	ErrInvalidTripType   = domain.NewValidationError("The trip type is not valid.")
	ErrNoReturnDate      = domain.NewValidationError("Please select a return date.")
	ErrInvalidDate       = domain.NewValidationError("The date is not valid.")
	ErrSameAirports      = domain.NewValidationError("Departure and destination airports cannot be the same.")
	ErrReturnTooEarly    = domain.NewValidationError("Return date cannot be less than departure date.")
	ErrPastDate          = domain.NewValidationError("You cannot book flights from the past.")
	ErrNoFlights         = domain.NewValidationError("No flights available with the selected criteria. Please try again.")
)

type FlightUseCase interface {
	ListAirports(ctx context.Context) ([]domain.Airport, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Get(ctx context.Context, id int64) (*domain.FlightDetail, error)
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
}

type AirportCache interface {
	GetAirports(ctx context.Context) ([]domain.Airport, error)
	SetAirports(ctx context.Context, airports []domain.Airport) error
}

// SearchInput mirrors the query string of the search form.
type SearchInput struct {
	TripType      string `form:"tripType"`
	From          string `form:"from"`
	To            string `form:"to"`
	DepartureDate string `form:"departureDate"`
	ReturnDate    string `form:"returnDate"`
	NumPassengers string `form:"numPassengers"`
	ChairType     string `form:"chairType"`
}

type SearchResult struct {
	TripType         string             `json:"trip_type"`
	From             string             `json:"from"`
	To               string             `json:"to"`
	DepartureDate    string             `json:"departure_date"`
	ReturnDate       string             `json:"return_date,omitempty"`
	Passengers       int                `json:"num_passengers"`
	ChairType        string             `json:"chair_type"`
	DepartureFlights []domain.FareOffer `json:"departure_flights"`
	ReturnFlights    []domain.FareOffer `json:"return_flights,omitempty"`
}

type FlightService struct {
	repo  repository.FlightRepository
	cache AirportCache
	now   func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(repo repository.FlightRepository, cache AirportCache, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{repo: repo, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	if s.cache != nil {
		cached, err := s.cache.GetAirports(ctx)
		if err != nil {
			log.Printf("WARNING: airports cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	airports, err := s.repo.ListAirports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetAirports(ctx, airports); err != nil {
			log.Printf("WARNING: airports cache write failed: %v", err)
		}
	}
	return airports, nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	return s.repo.ListUpcoming(ctx, s.now())
}

func (s *FlightService) Get(ctx context.Context, id int64) (*domain.FlightDetail, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fares, err := s.repo.ListFares(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list fares: %w", err)
	}
	return &domain.FlightDetail{Flight: *flight, Fares: fares}, nil
}

func (s *FlightService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	tripType := strings.TrimSpace(input.TripType)
	from := strings.ToUpper(strings.TrimSpace(input.From))
	to := strings.ToUpper(strings.TrimSpace(input.To))
	departure := strings.TrimSpace(input.DepartureDate)
	ret := strings.TrimSpace(input.ReturnDate)
	chairType := strings.TrimSpace(input.ChairType)

	passengers := int64(1)
	if raw := strings.TrimSpace(input.NumPassengers); raw != "" {
		n, ok := validation.ParsePositiveInt(raw)
		if !ok {
			return nil, ErrInvalidPassengers
		}
		passengers = n
	}

	if from == "" && to == "" && departure == "" && chairType == "" {
		return nil, ErrFillAllFields
	}
	switch {
	case from == "":
		return nil, ErrNoDeparture
	case to == "":
		return nil, ErrNoDestination
	case departure == "":
		return nil, ErrNoDepartureDate
	case chairType == "":
		return nil, ErrNoSeatType
	}

	if tripType == "" {
		tripType = TripOneWay
	}
	if tripType != TripOneWay && tripType != TripRound {
		return nil, ErrInvalidTripType
	}
	round := tripType == TripRound
	if round && ret == "" {
		return nil, ErrNoReturnDate
	}

	departureDay, ok := validation.ParseDate(departure)
	if !ok {
		return nil, ErrInvalidDate
	}
	var returnDay time.Time
	if round {
		if returnDay, ok = validation.ParseDate(ret); !ok {
			return nil, ErrInvalidDate
		}
	}

	if from == to {
		return nil, ErrSameAirports
	}
	if round && returnDay.Before(departureDay) {
		return nil, ErrReturnTooEarly
	}
	now := s.now()
	if departureDay.Before(validation.StartOfDay(now)) {
		return nil, ErrPastDate
	}

	result := &SearchResult{
		TripType:      tripType,
		From:          from,
		To:            to,
		DepartureDate: departure,
		Passengers:    int(passengers),
		ChairType:     chairType,
	}

	outbound, err := s.repo.SearchOffers(ctx, repository.OfferQuery{
		From: from, To: to, Day: departureDay, TicketType: chairType, Seats: int(passengers), After: now,
	})
	if err != nil {
		return nil, fmt.Errorf("search departure flights: %w", err)
	}
	if len(outbound) == 0 {
		return nil, ErrNoFlights
	}
	result.DepartureFlights = outbound

	if round {
		inbound, err := s.repo.SearchOffers(ctx, repository.OfferQuery{
			From: to, To: from, Day: returnDay, TicketType: chairType, Seats: int(passengers), After: now,
		})
		if err != nil {
			return nil, fmt.Errorf("search return flights: %w", err)
		}
		if len(inbound) == 0 {
			return nil, ErrNoFlights
		}
		result.ReturnDate = ret
		result.ReturnFlights = inbound
	}
	return result, nil
}

var _ FlightUseCase = (*FlightService)(nil)

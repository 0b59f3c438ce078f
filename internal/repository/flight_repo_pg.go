package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OfferQuery selects bookable fares on one route and calendar day.
type OfferQuery struct {
	From       string
	To         string
	Day        time.Time
	TicketType string
	Seats      int
	After      time.Time
}

type FlightRepository interface {
	ListAirports(ctx context.Context) ([]domain.Airport, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ListFares(ctx context.Context, flightID int64) ([]domain.FlightTicketType, error)
	GetFare(ctx context.Context, flightID int64, ticketType string) (*domain.FlightTicketType, error)
	SearchOffers(ctx context.Context, q OfferQuery) ([]domain.FareOffer, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT code, name, city, country FROM airports ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.City, &a.Country); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

func (r *PGFlightRepository) ListUpcoming(ctx context.Context, after time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights f `+flightJoins+`
		WHERE f.departure_time > $1 ORDER BY f.departure_time`, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(flightDest(&f)...); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights f `+flightJoins+` WHERE f.id=$1`, id)
	var f domain.Flight
	if err := row.Scan(flightDest(&f)...); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

const fareColumns = `ft.id, ft.flight_id, ft.ticket_type_id, tt.name, ft.price, ft.available_seats`

func fareDest(ft *domain.FlightTicketType) []any {
	return []any{&ft.ID, &ft.FlightID, &ft.TicketTypeID, &ft.TicketTypeName, &ft.Price, &ft.AvailableSeats}
}

func (r *PGFlightRepository) ListFares(ctx context.Context, flightID int64) ([]domain.FlightTicketType, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fareColumns+`
		FROM flight_ticket_types ft JOIN ticket_types tt ON tt.id = ft.ticket_type_id
		WHERE ft.flight_id=$1 ORDER BY ft.price`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fares := make([]domain.FlightTicketType, 0)
	for rows.Next() {
		var ft domain.FlightTicketType
		if err := rows.Scan(fareDest(&ft)...); err != nil {
			return nil, err
		}
		fares = append(fares, ft)
	}
	return fares, rows.Err()
}

func (r *PGFlightRepository) GetFare(ctx context.Context, flightID int64, ticketType string) (*domain.FlightTicketType, error) {
	row := r.db.QueryRow(ctx, `SELECT `+fareColumns+`
		FROM flight_ticket_types ft JOIN ticket_types tt ON tt.id = ft.ticket_type_id
		WHERE ft.flight_id=$1 AND tt.name=$2`, flightID, ticketType)
	var ft domain.FlightTicketType
	if err := row.Scan(fareDest(&ft)...); err != nil {
		return nil, notFound(err)
	}
	return &ft, nil
}

func (r *PGFlightRepository) SearchOffers(ctx context.Context, q OfferQuery) ([]domain.FareOffer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+`, `+fareColumns+`
		FROM flight_ticket_types ft
		JOIN ticket_types tt ON tt.id = ft.ticket_type_id
		JOIN flights f ON f.id = ft.flight_id
		`+flightJoins+`
		WHERE f.departure_airport=$1 AND f.arrival_airport=$2
		  AND f.departure_time >= $3 AND f.departure_time < $4
		  AND f.departure_time > $5
		  AND tt.name=$6 AND ft.available_seats >= $7
		ORDER BY ft.price, f.departure_time`,
		q.From, q.To, q.Day, q.Day.Add(24*time.Hour), q.After, q.TicketType, q.Seats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]domain.FareOffer, 0)
	for rows.Next() {
		var o domain.FareOffer
		dest := append(flightDest(&o.Flight), fareDest(&o.Fare)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)

package repository

import (
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...any) error
}

// notFound maps pgx.ErrNoRows to domain.ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const flightColumns = `f.id, f.flight_number, f.airline, f.departure_airport, f.arrival_airport,
	da.country, aa.country, f.departure_time, f.arrival_time, f.base_price`

const flightJoins = `JOIN airports da ON da.code = f.departure_airport
	JOIN airports aa ON aa.code = f.arrival_airport`

func flightDest(f *domain.Flight) []any {
	return []any{&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureAirport, &f.ArrivalAirport,
		&f.DepartureCountry, &f.ArrivalCountry, &f.DepartureTime, &f.ArrivalTime, &f.BasePrice}
}

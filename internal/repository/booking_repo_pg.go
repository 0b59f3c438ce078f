package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	CreateCheckout(ctx context.Context, accountID int64, legs []domain.CheckoutLeg, passengers []domain.Passenger) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Booking, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Booking, error)
	ListPendingCancellations(ctx context.Context) ([]domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	CancelAndRelease(ctx context.Context, id int64, from domain.BookingStatus) error
	ExpireUnpaidBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingSelect = `SELECT b.id, b.account_id, b.flight_ticket_type_id, b.seat_number, b.status, b.booked_at, b.updated_at,
	` + flightColumns + `, tt.name, ft.price,
	EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id),
	(SELECT count(*) FROM booking_passengers bp WHERE bp.booking_id = b.id),
	a.email
FROM bookings b
JOIN accounts a ON a.id = b.account_id
JOIN flight_ticket_types ft ON ft.id = b.flight_ticket_type_id
JOIN ticket_types tt ON tt.id = ft.ticket_type_id
JOIN flights f ON f.id = ft.flight_id
` + flightJoins

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	dest := []any{&b.ID, &b.AccountID, &b.FlightTicketTypeID, &b.SeatNumber, &b.Status, &b.BookedAt, &b.UpdatedAt}
	dest = append(dest, flightDest(&b.Flight)...)
	dest = append(dest, &b.TicketType, &b.Price, &b.Paid, &b.PassengerCount, &b.AccountEmail)
	err := row.Scan(dest...)
	return b, err
}

func (r *PGBookingRepository) listBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// assignSeats returns the n lowest seat labels not present in held, where
// each held entry is a comma-separated label list of a live booking.
func assignSeats(held []string, n int) string {
	taken := make(map[int]bool)
	for _, labels := range held {
		for _, label := range strings.Split(labels, ",") {
			if seat, err := strconv.Atoi(strings.TrimSpace(label)); err == nil {
				taken[seat] = true
			}
		}
	}

	labels := make([]string, 0, n)
	for seat := 1; len(labels) < n; seat++ {
		if !taken[seat] {
			labels = append(labels, strconv.Itoa(seat))
		}
	}
	return strings.Join(labels, ",")
}

// heldSeats lists the seat labels of every non-canceled booking on a fare.
// Callers must hold the fare row lock so the result stays current.
func heldSeats(ctx context.Context, tx pgx.Tx, fareID int64) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT seat_number FROM bookings
		WHERE flight_ticket_type_id=$1 AND status <> $2 AND seat_number <> ''`, fareID, domain.BookingStatusCanceled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	held := make([]string, 0)
	for rows.Next() {
		var labels string
		if err := rows.Scan(&labels); err != nil {
			return nil, err
		}
		held = append(held, labels)
	}
	return held, rows.Err()
}

func (r *PGBookingRepository) CreateCheckout(ctx context.Context, accountID int64, legs []domain.CheckoutLeg, passengers []domain.Passenger) ([]domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	saved := make([]domain.Passenger, len(passengers))
	for i, p := range passengers {
		if err := tx.QueryRow(ctx, `INSERT INTO passengers
			(first_name, last_name, gender, date_of_birth, nationality, passport_number, passport_from_country, passport_expiry)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			p.FirstName, p.LastName, p.Gender, p.DateOfBirth, p.Nationality, p.PassportNumber, p.PassportFromCountry, p.PassportExpiry).
			Scan(&p.ID); err != nil {
			return nil, err
		}
		saved[i] = p
	}

	seats := len(passengers)
	bookings := make([]domain.Booking, 0, len(legs))
	for _, leg := range legs {
		tag, err := tx.Exec(ctx, `UPDATE flight_ticket_types SET available_seats = available_seats - $2
			WHERE id=$1 AND available_seats >= $2`, leg.Fare.ID, seats)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrNoSeats
		}
		held, err := heldSeats(ctx, tx, leg.Fare.ID)
		if err != nil {
			return nil, err
		}

		b := domain.Booking{
			AccountID:          accountID,
			FlightTicketTypeID: leg.Fare.ID,
			SeatNumber:         assignSeats(held, seats),
			Status:             domain.BookingStatusPendingCancellation,
			Flight:             leg.Flight,
			TicketType:         leg.Fare.TicketTypeName,
			Price:              leg.Fare.Price,
			Passengers:         saved,
			PassengerCount:     seats,
		}
		if err := tx.QueryRow(ctx, `INSERT INTO bookings (account_id, flight_ticket_type_id, seat_number, status)
			VALUES ($1, $2, $3, $4) RETURNING id, booked_at, updated_at`,
			b.AccountID, b.FlightTicketTypeID, b.SeatNumber, b.Status).
			Scan(&b.ID, &b.BookedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}

		batch := &pgx.Batch{}
		for _, p := range saved {
			batch.Queue(`INSERT INTO booking_passengers (booking_id, passenger_id) VALUES ($1, $2)`, b.ID, p.ID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, bookingSelect+` WHERE b.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.db.Query(ctx, `SELECT p.id, p.first_name, p.last_name, p.gender, p.date_of_birth, p.nationality,
		p.passport_number, p.passport_from_country, p.passport_expiry
		FROM passengers p JOIN booking_passengers bp ON bp.passenger_id = p.id
		WHERE bp.booking_id=$1 ORDER BY p.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Gender, &p.DateOfBirth, &p.Nationality,
			&p.PassportNumber, &p.PassportFromCountry, &p.PassportExpiry); err != nil {
			return nil, err
		}
		b.Passengers = append(b.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Booking, error) {
	return r.listBookings(ctx, bookingSelect+` WHERE b.id = ANY($1) ORDER BY b.id`, ids)
}

func (r *PGBookingRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Booking, error) {
	return r.listBookings(ctx, bookingSelect+` WHERE b.account_id=$1 ORDER BY b.booked_at DESC, b.id DESC`, accountID)
}

func (r *PGBookingRepository) ListPendingCancellations(ctx context.Context) ([]domain.Booking, error) {
	return r.listBookings(ctx, bookingSelect+`
		WHERE b.status=$1 AND EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id)
		ORDER BY b.updated_at, b.id`, domain.BookingStatusPendingCancellation)
}

// TransitionStatus moves a booking between statuses and fails with
// domain.ErrConflict when the booking is no longer in from.
func (r *PGBookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// CancelAndRelease cancels the booking and returns its seats to the fare.
func (r *PGBookingRepository) CancelAndRelease(ctx context.Context, id int64, from domain.BookingStatus) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var fareID int64
	var seats int
	err = tx.QueryRow(ctx, `UPDATE bookings b SET status=$3, updated_at=now()
		WHERE b.id=$1 AND b.status=$2
		RETURNING b.flight_ticket_type_id, (SELECT count(*) FROM booking_passengers bp WHERE bp.booking_id = b.id)`,
		id, from, domain.BookingStatusCanceled).Scan(&fareID, &seats)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE flight_ticket_types SET available_seats = available_seats + $2 WHERE id=$1`, fareID, seats); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ExpireUnpaidBefore cancels unpaid bookings made before deadline, releases
// their seats and returns them in their new state.
func (r *PGBookingRepository) ExpireUnpaidBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `UPDATE bookings b SET status=$1, updated_at=now()
		WHERE b.status=$2 AND b.booked_at <= $3
		  AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id)
		RETURNING b.id, b.flight_ticket_type_id, (SELECT count(*) FROM booking_passengers bp WHERE bp.booking_id = b.id)`,
		domain.BookingStatusCanceled, domain.BookingStatusPendingCancellation, deadline)
	if err != nil {
		return nil, err
	}

	type release struct {
		fareID int64
		seats  int
	}
	var ids []int64
	var releases []release
	for rows.Next() {
		var id int64
		var rel release
		if err := rows.Scan(&id, &rel.fareID, &rel.seats); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		releases = append(releases, rel)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	for _, rel := range releases {
		if _, err := tx.Exec(ctx, `UPDATE flight_ticket_types SET available_seats = available_seats + $2 WHERE id=$1`, rel.fareID, rel.seats); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.ListByIDs(ctx, ids)
}

var _ BookingRepository = (*PGBookingRepository)(nil)

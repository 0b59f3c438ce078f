package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	// PayCheckout stores the card, records one payment per booking and
	// confirms the bookings, all or nothing.
	PayCheckout(ctx context.Context, card *domain.Card, bookingIDs []int64, amount int64, transactionID string, paidAt time.Time) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) PayCheckout(ctx context.Context, card *domain.Card, bookingIDs []int64, amount int64, transactionID string, paidAt time.Time) ([]domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO cards (account_id, card_number, cardholder_name, expiry_month, expiry_year, card_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id, card_number) DO UPDATE SET
			cardholder_name = EXCLUDED.cardholder_name,
			expiry_month = EXCLUDED.expiry_month,
			expiry_year = EXCLUDED.expiry_year,
			card_type = EXCLUDED.card_type
		RETURNING id`,
		card.AccountID, card.CardNumber, card.CardholderName, card.ExpiryMonth, card.ExpiryYear, card.CardType).
		Scan(&card.ID); err != nil {
		return nil, err
	}

	payments := make([]domain.Payment, 0, len(bookingIDs))
	for _, id := range bookingIDs {
		cmd, err := tx.Exec(ctx, `UPDATE bookings b SET status=$2, updated_at=now()
			WHERE b.id=$1 AND b.account_id=$3 AND b.status=$4
			  AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id)`,
			id, domain.BookingStatusConfirmed, card.AccountID, domain.BookingStatusPendingCancellation)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, domain.ErrConflict
		}

		p := domain.Payment{BookingID: id, CardID: card.ID, Amount: amount, TransactionID: transactionID, PaidAt: paidAt}
		if err := tx.QueryRow(ctx, `INSERT INTO payments (booking_id, card_id, amount, transaction_id, paid_at)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			p.BookingID, p.CardID, p.Amount, p.TransactionID, p.PaidAt).Scan(&p.ID); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payments, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)

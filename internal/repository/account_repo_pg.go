package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id int64) error
}

type PGAccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) AccountRepository {
	return &PGAccountRepository{db: db}
}

const accountColumns = `id, username, email, phone_number, password_hash, first_name, last_name, gender,
	date_of_birth, role, status, email_verified, created_at, updated_at`

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PhoneNumber, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Gender,
		&a.DateOfBirth, &a.Role, &a.Status, &a.EmailVerified, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *PGAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.db.QueryRow(ctx, `INSERT INTO accounts
		(username, email, phone_number, password_hash, first_name, last_name, gender, date_of_birth, role, status, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		account.Username, account.Email, account.PhoneNumber, account.PasswordHash, account.FirstName, account.LastName,
		account.Gender, account.DateOfBirth, account.Role, account.Status, account.EmailVerified).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *PGAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
}

func (r *PGAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username=$1`, username))
}

func (r *PGAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE lower(email)=lower($1)`, email))
}

func (r *PGAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	err := r.db.QueryRow(ctx, `UPDATE accounts SET email=$2, phone_number=$3, first_name=$4, last_name=$5, gender=$6,
		date_of_birth=$7, email_verified=$8, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		account.ID, account.Email, account.PhoneNumber, account.FirstName, account.LastName, account.Gender,
		account.DateOfBirth, account.EmailVerified).Scan(&account.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return notFound(err)
}

func (r *PGAccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, `UPDATE accounts SET password_hash=$2, updated_at=now() WHERE id=$1`, id, passwordHash)
}

func (r *PGAccountRepository) MarkEmailVerified(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE accounts SET email_verified=true, updated_at=now() WHERE id=$1`, id)
}

func (r *PGAccountRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type OTPRepository interface {
	// Create stores a new code and retires any unused code of the same purpose.
	Create(ctx context.Context, token *domain.OtpToken) error
	GetLatest(ctx context.Context, accountID int64, purpose domain.OTPPurpose) (*domain.OtpToken, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type PGOTPRepository struct {
	db *pgxpool.Pool
}

func NewOTPRepository(db *pgxpool.Pool) OTPRepository {
	return &PGOTPRepository{db: db}
}

func (r *PGOTPRepository) Create(ctx context.Context, token *domain.OtpToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE otp_tokens SET used_at=$3 WHERE account_id=$1 AND purpose=$2 AND used_at IS NULL`,
		token.AccountID, token.Purpose, token.CreatedAt); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx, `INSERT INTO otp_tokens (account_id, code, purpose, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		token.AccountID, token.Code, token.Purpose, token.ExpiresAt, token.CreatedAt).Scan(&token.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGOTPRepository) GetLatest(ctx context.Context, accountID int64, purpose domain.OTPPurpose) (*domain.OtpToken, error) {
	var t domain.OtpToken
	err := r.db.QueryRow(ctx, `SELECT id, account_id, code, purpose, expires_at, used_at, created_at
		FROM otp_tokens WHERE account_id=$1 AND purpose=$2 ORDER BY created_at DESC, id DESC LIMIT 1`, accountID, purpose).
		Scan(&t.ID, &t.AccountID, &t.Code, &t.Purpose, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *PGOTPRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE otp_tokens SET used_at=$2 WHERE id=$1 AND used_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *PGOTPRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM otp_tokens WHERE expires_at < $1 OR used_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var (
	_ AccountRepository = (*PGAccountRepository)(nil)
	_ OTPRepository     = (*PGOTPRepository)(nil)
)

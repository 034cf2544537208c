package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `CREATE TABLE IF NOT EXISTS payments (
	id          BIGSERIAL PRIMARY KEY,
	order_id    TEXT NOT NULL UNIQUE,
	payment_id  TEXT NOT NULL DEFAULT '',
	mobno       BIGINT NOT NULL,
	package_id  INT NOT NULL,
	amount      BIGINT NOT NULL,
	currency    TEXT NOT NULL,
	status      TEXT NOT NULL,
	lock_token  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const addLockToken = `ALTER TABLE payments ADD COLUMN IF NOT EXISTS lock_token TEXT NOT NULL DEFAULT ''`

const paymentColumns = `id, order_id, payment_id, mobno, package_id, amount, currency, status, lock_token, created_at, updated_at`

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, orderID, paymentID string, status domain.PaymentStatus) (*domain.Payment, error)
	AbandonCreatedBefore(ctx context.Context, deadline time.Time) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) *PGPaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, addLockToken)
	return err
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.Status == "" {
		payment.Status = domain.PaymentStatusCreated
	}
	return r.db.QueryRow(ctx, `INSERT INTO payments (order_id, mobno, package_id, amount, currency, status, lock_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		payment.OrderID, payment.Mobno, payment.PackageID, payment.Amount, payment.Currency, payment.Status, payment.LockToken).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PGPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id=$1`, orderID)
	return scanPayment(row)
}

func (r *PGPaymentRepository) UpdateStatus(ctx context.Context, orderID, paymentID string, status domain.PaymentStatus) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `UPDATE payments
		SET status=$1, payment_id=COALESCE(NULLIF($2, ''), payment_id), updated_at=now()
		WHERE order_id=$3
		RETURNING `+paymentColumns, status, paymentID, orderID)
	return scanPayment(row)
}

func (r *PGPaymentRepository) AbandonCreatedBefore(ctx context.Context, deadline time.Time) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `UPDATE payments SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at <= $3
		RETURNING `+paymentColumns, domain.PaymentStatusAbandoned, domain.PaymentStatusCreated, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var abandoned []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		abandoned = append(abandoned, *p)
	}
	return abandoned, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.OrderID, &p.PaymentID, &p.Mobno, &p.PackageID, &p.Amount, &p.Currency, &p.Status, &p.LockToken, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

var (
	_ PaymentRepository = (*PGPaymentRepository)(nil)
	_ DB                = (*pgxpool.Pool)(nil)
)

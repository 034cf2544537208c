package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentRowColumns = []string{"id", "order_id", "payment_id", "mobno", "package_id", "amount", "currency", "status", "lock_token", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*PGPaymentRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return NewPaymentRepository(db), db
}

func TestPaymentRepository_Migrate(t *testing.T) {
	repo, db := newMockRepo(t)

	db.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS payments")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	db.ExpectExec(regexp.QuoteMeta("ADD COLUMN IF NOT EXISTS lock_token")).
		WillReturnResult(pgxmock.NewResult("ALTER TABLE", 0))

	require.NoError(t, repo.Migrate(context.Background()))
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPaymentRepository_Create(t *testing.T) {
	repo, db := newMockRepo(t)
	now := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

	p := &domain.Payment{OrderID: "order_1", Mobno: 9876543210, PackageID: 1, Amount: 250000, Currency: "INR", LockToken: "tok-1"}
	db.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs("order_1", int64(9876543210), 1, int64(250000), "INR", domain.PaymentStatusCreated, "tok-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, domain.PaymentStatusCreated, p.Status)
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPaymentRepository_GetByOrderID(t *testing.T) {
	repo, db := newMockRepo(t)
	now := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

	db.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE order_id=$1")).
		WithArgs("order_1").
		WillReturnRows(pgxmock.NewRows(paymentRowColumns).
			AddRow(int64(7), "order_1", "", int64(9876543210), 1, int64(250000), "INR", domain.PaymentStatusCreated, "tok-1", now, now))

	got, err := repo.GetByOrderID(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, &domain.Payment{
		ID: 7, OrderID: "order_1", Mobno: 9876543210, PackageID: 1, Amount: 250000, Currency: "INR",
		Status: domain.PaymentStatusCreated, LockToken: "tok-1", CreatedAt: now, UpdatedAt: now,
	}, got)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPaymentRepository_GetByOrderID_NotFound(t *testing.T) {
	repo, db := newMockRepo(t)

	db.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE order_id=$1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByOrderID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPaymentRepository_UpdateStatus(t *testing.T) {
	repo, db := newMockRepo(t)
	now := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

	// An empty payment id keeps the stored one.
	db.ExpectQuery(regexp.QuoteMeta("payment_id=COALESCE(NULLIF($2, ''), payment_id)")+`(?s).*`+regexp.QuoteMeta("WHERE order_id=$3")).
		WithArgs(domain.PaymentStatusDismissed, "", "order_1").
		WillReturnRows(pgxmock.NewRows(paymentRowColumns).
			AddRow(int64(7), "order_1", "pay_1", int64(9876543210), 1, int64(250000), "INR", domain.PaymentStatusDismissed, "tok-1", now, now))

	got, err := repo.UpdateStatus(context.Background(), "order_1", "", domain.PaymentStatusDismissed)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusDismissed, got.Status)
	assert.Equal(t, "pay_1", got.PaymentID)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPaymentRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, db := newMockRepo(t)

	db.ExpectQuery(regexp.QuoteMeta("UPDATE payments")).
		WithArgs(domain.PaymentStatusCompleted, "pay_1", "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), "missing", "pay_1", domain.PaymentStatusCompleted)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPaymentRepository_AbandonCreatedBefore(t *testing.T) {
	repo, db := newMockRepo(t)
	deadline := time.Date(2025, 2, 10, 11, 0, 0, 0, time.UTC)
	created := deadline.Add(-time.Hour)

	db.ExpectQuery(regexp.QuoteMeta("WHERE status=$2 AND created_at <= $3")).
		WithArgs(domain.PaymentStatusAbandoned, domain.PaymentStatusCreated, deadline).
		WillReturnRows(pgxmock.NewRows(paymentRowColumns).
			AddRow(int64(1), "o1", "", int64(1111111111), 1, int64(100), "INR", domain.PaymentStatusAbandoned, "tok-1", created, deadline).
			AddRow(int64(2), "o2", "", int64(2222222222), 2, int64(200), "INR", domain.PaymentStatusAbandoned, "tok-2", created, deadline))

	got, err := repo.AbandonCreatedBefore(context.Background(), deadline)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].OrderID)
	assert.Equal(t, "tok-2", got[1].LockToken)
	assert.Equal(t, int64(2222222222), got[1].Mobno)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPaymentRepository_AbandonCreatedBefore_None(t *testing.T) {
	repo, db := newMockRepo(t)
	deadline := time.Date(2025, 2, 10, 11, 0, 0, 0, time.UTC)

	db.ExpectQuery(regexp.QuoteMeta("UPDATE payments SET status=$1")).
		WithArgs(domain.PaymentStatusAbandoned, domain.PaymentStatusCreated, deadline).
		WillReturnRows(pgxmock.NewRows(paymentRowColumns))

	got, err := repo.AbandonCreatedBefore(context.Background(), deadline)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, db.ExpectationsWereMet())
}

package subscription

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupSubMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func subscriptionRowColumns() []string {
	return []string{
		"id", "user_id", "plan_id", "status", "start_date", "end_date", "is_yearly", "auto_renew",
		"checkins_used_this_month", "last_billing_date", "next_billing_date", "cancelled_at",
		"created_at", "updated_at",
	}
}

func TestGetActiveByUser_None(t *testing.T) {
	repo, mock, close := setupSubMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.user_id = $1 AND s.status IN ('active', 'cancelled') AND s.end_date > NOW()")).
		WithArgs(5).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActiveByUser(context.Background(), 5)
	require.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestGetActiveByUser_IncludesCancelledUntilEndDate(t *testing.T) {
	repo, mock, close := setupSubMock(t)
	defer close()

	now := time.Now().UTC()
	cols := append(subscriptionRowColumns(),
		"plan_name", "plan_type", "max_checkins_per_month", "price_monthly_cents", "price_yearly_cents")
	rows := sqlmock.NewRows(cols).
		AddRow(9, 5, 2, StatusCancelled, now.AddDate(0, -1, 0), now.AddDate(0, 0, 10), false, false,
			3, now, now, now, now, now, "Premium", "premium", 20, 9990, nil)
	mock.ExpectQuery(regexp.QuoteMeta("s.status IN ('active', 'cancelled')")).
		WithArgs(5).
		WillReturnRows(rows)

	sub, err := repo.GetActiveByUser(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, sub.Status)
	require.Equal(t, "Premium", sub.PlanName)
}

func TestCreateWithPayment_Transaction(t *testing.T) {
	repo, mock, close := setupSubMock(t)
	defer close()

	now := time.Now().UTC()
	end := now.Add(30 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subscriptions (user_id, plan_id, status, start_date, end_date, is_yearly, last_billing_date, next_billing_date)")).
		WithArgs(5, 1, now, end, false, now, end).
		WillReturnRows(sqlmock.NewRows(subscriptionRowColumns()).
			AddRow(9, 5, 1, "active", now, end, false, true, 0, now, end, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments (subscription_id, amount_cents, currency, status, payment_method, transaction_id, external_payment_id, payment_date, description)")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "subscription_id", "amount_cents", "currency", "status", "payment_method",
			"transaction_id", "external_payment_id", "payment_date", "description", "created_at",
		}).AddRow(3, 9, 9990, "BRL", "completed", "pm_card", "tx-1", "pi_1", now, "Subscription to Basic (monthly)", now))
	mock.ExpectCommit()

	external := "pi_1"
	sub, pay, err := repo.CreateWithPayment(context.Background(),
		&Subscription{UserID: 5, PlanID: 1, StartDate: now, EndDate: end, LastBillingDate: &now, NextBillingDate: &end},
		&Payment{AmountCents: 9990, Currency: "BRL", Status: PaymentCompleted, PaymentMethod: "pm_card",
			TransactionID: "tx-1", ExternalPaymentID: &external, PaymentDate: &now,
			Description: "Subscription to Basic (monthly)"})
	require.NoError(t, err)
	require.Equal(t, 9, sub.ID)
	require.Equal(t, 3, pay.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_NoActiveRow(t *testing.T) {
	repo, mock, close := setupSubMock(t)
	defer close()

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled', auto_renew = false, cancelled_at = $1")).
		WithArgs(at, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), 9, at)
	require.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestIncrementUsage(t *testing.T) {
	repo, mock, close := setupSubMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status IN ('active', 'cancelled')")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementUsage(context.Background(), 9))
}

func TestExpirePastDue(t *testing.T) {
	repo, mock, close := setupSubMock(t)
	defer close()

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'expired'")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ExpirePastDue(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPlanNotFound             = errors.New("plan not found")
	ErrNoActiveSubscription     = errors.New("no active subscription")
	ErrActiveSubscriptionExists = errors.New("user already has an active subscription")
	ErrQuotaExceeded            = errors.New("monthly check-in quota exceeded")
	ErrPaymentFailed            = errors.New("payment failed")
	ErrYearlyUnavailable        = errors.New("yearly pricing not available for this plan")
)

const planColumns = `id, name, description, plan_type, price_monthly_cents, price_yearly_cents,
		max_checkins_per_month, max_gyms_access, features, is_active, created_at, updated_at`

const subWithPlanColumns = `s.id, s.user_id, s.plan_id, s.status, s.start_date, s.end_date, s.is_yearly,
		s.auto_renew, s.checkins_used_this_month, s.last_billing_date, s.next_billing_date,
		s.cancelled_at, s.created_at, s.updated_at,
		p.name AS plan_name, p.plan_type, p.max_checkins_per_month, p.price_monthly_cents, p.price_yearly_cents`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActivePlans(ctx context.Context) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE is_active = true ORDER BY price_monthly_cents ASC`

	var plans []Plan
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) GetActivePlan(ctx context.Context, id int) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1 AND is_active = true`

	var plan Plan
	err := r.db.GetContext(ctx, &plan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetActiveByUser returns the subscription that still grants access.
// Cancelled rows count until their end_date passes.
func (r *repository) GetActiveByUser(ctx context.Context, userID int) (*SubscriptionWithPlan, error) {
	query := `
		SELECT ` + subWithPlanColumns + `
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1 AND s.status IN ('active', 'cancelled') AND s.end_date > NOW()
		ORDER BY s.end_date DESC
		LIMIT 1
	`

	var sub SubscriptionWithPlan
	err := r.db.GetContext(ctx, &sub, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) GetRenewableByUser(ctx context.Context, userID int) (*SubscriptionWithPlan, error) {
	query := `
		SELECT ` + subWithPlanColumns + `
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1 AND s.status IN ('active', 'cancelled')
		ORDER BY s.end_date DESC
		LIMIT 1
	`

	var sub SubscriptionWithPlan
	err := r.db.GetContext(ctx, &sub, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) CreateWithPayment(ctx context.Context, sub *Subscription, payment *Payment) (*Subscription, *Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var created Subscription
	err = tx.GetContext(ctx, &created, `
		INSERT INTO subscriptions (user_id, plan_id, status, start_date, end_date, is_yearly, last_billing_date, next_billing_date)
		VALUES ($1, $2, 'active', $3, $4, $5, $6, $7)
		RETURNING id, user_id, plan_id, status, start_date, end_date, is_yearly, auto_renew,
			checkins_used_this_month, last_billing_date, next_billing_date, cancelled_at, created_at, updated_at
	`, sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate, sub.IsYearly, sub.LastBillingDate, sub.NextBillingDate)
	if err != nil {
		return nil, nil, err
	}

	createdPayment, err := insertPayment(ctx, tx, created.ID, payment)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &created, createdPayment, nil
}

func (r *repository) Cancel(ctx context.Context, subscriptionID int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'cancelled', auto_renew = false, cancelled_at = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'active'
	`, at, subscriptionID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoActiveSubscription
	}
	return nil
}

func (r *repository) Renew(ctx context.Context, subscriptionID int, newEndDate, billedAt time.Time, payment *Payment) (*Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'active', end_date = $1, next_billing_date = $1, last_billing_date = $2,
			auto_renew = true, cancelled_at = NULL, checkins_used_this_month = 0, updated_at = NOW()
		WHERE id = $3
	`, newEndDate, billedAt, subscriptionID)
	if err != nil {
		return nil, err
	}

	createdPayment, err := insertPayment(ctx, tx, subscriptionID, payment)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return createdPayment, nil
}

func insertPayment(ctx context.Context, tx *sqlx.Tx, subscriptionID int, payment *Payment) (*Payment, error) {
	var created Payment
	err := tx.GetContext(ctx, &created, `
		INSERT INTO payments (subscription_id, amount_cents, currency, status, payment_method, transaction_id, external_payment_id, payment_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, subscription_id, amount_cents, currency, status, payment_method, transaction_id, external_payment_id, payment_date, description, created_at
	`, subscriptionID, payment.AmountCents, payment.Currency, payment.Status, payment.PaymentMethod,
		payment.TransactionID, payment.ExternalPaymentID, payment.PaymentDate, payment.Description)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) IncrementUsage(ctx context.Context, subscriptionID int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET checkins_used_this_month = checkins_used_this_month + 1, updated_at = NOW()
		WHERE id = $1 AND status IN ('active', 'cancelled')
	`, subscriptionID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoActiveSubscription
	}
	return nil
}

func (r *repository) ListPaymentsByUser(ctx context.Context, userID, limit int) ([]PaymentWithPlan, error) {
	query := `
		SELECT pay.id, pay.subscription_id, pay.amount_cents, pay.currency, pay.status, pay.payment_method,
			pay.transaction_id, pay.external_payment_id, pay.payment_date, pay.description, pay.created_at,
			p.name AS plan_name
		FROM payments pay
		JOIN subscriptions s ON s.id = pay.subscription_id
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1
		ORDER BY pay.created_at DESC
		LIMIT $2
	`

	var payments []PaymentWithPlan
	err := r.db.SelectContext(ctx, &payments, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// ExpirePastDue flips active subscriptions whose period ended and are not up
// for auto renewal.
func (r *repository) ExpirePastDue(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date < $1 AND auto_renew = false
	`, now)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}

func (r *repository) ListDueForAutoRenew(ctx context.Context, now time.Time) ([]SubscriptionWithPlan, error) {
	query := `
		SELECT ` + subWithPlanColumns + `
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.status = 'active' AND s.auto_renew = true AND s.end_date < $1
	`

	var subs []SubscriptionWithPlan
	err := r.db.SelectContext(ctx, &subs, query, now)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// ResetMonthlyUsage zeroes the counter for active subscriptions that have not
// been reset since the given month start.
func (r *repository) ResetMonthlyUsage(ctx context.Context, monthStart time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET checkins_used_this_month = 0, usage_reset_at = $1, updated_at = NOW()
		WHERE status = 'active' AND (usage_reset_at IS NULL OR usage_reset_at < $1)
	`, monthStart)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}

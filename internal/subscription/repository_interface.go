package subscription

import (
	"context"
	"time"
)

type Repository interface {
	ListActivePlans(ctx context.Context) ([]Plan, error)
	GetActivePlan(ctx context.Context, id int) (*Plan, error)

	// GetActiveByUser returns the user's subscription in active status, or
	// ErrNoActiveSubscription.
	GetActiveByUser(ctx context.Context, userID int) (*SubscriptionWithPlan, error)
	// GetRenewableByUser also matches cancelled subscriptions, which can be
	// reactivated by renewing.
	GetRenewableByUser(ctx context.Context, userID int) (*SubscriptionWithPlan, error)

	// CreateWithPayment writes the subscription and its first payment in one
	// transaction.
	CreateWithPayment(ctx context.Context, sub *Subscription, payment *Payment) (*Subscription, *Payment, error)
	Cancel(ctx context.Context, subscriptionID int, at time.Time) error
	// Renew reactivates the row, moves end/billing dates and records the
	// renewal payment in one transaction.
	Renew(ctx context.Context, subscriptionID int, newEndDate, billedAt time.Time, payment *Payment) (*Payment, error)

	IncrementUsage(ctx context.Context, subscriptionID int) error
	ListPaymentsByUser(ctx context.Context, userID, limit int) ([]PaymentWithPlan, error)

	// Maintenance queries.
	ExpirePastDue(ctx context.Context, now time.Time) (int, error)
	ListDueForAutoRenew(ctx context.Context, now time.Time) ([]SubscriptionWithPlan, error)
	ResetMonthlyUsage(ctx context.Context, monthStart time.Time) (int, error)
}

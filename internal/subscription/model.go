package subscription

import (
	"encoding/json"
	"time"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

const (
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Plan struct {
	ID                  int       `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Description         string    `db:"description" json:"description"`
	PlanType            string    `db:"plan_type" json:"plan_type"`
	PriceMonthlyCents   int       `db:"price_monthly_cents" json:"price_monthly_cents"`
	PriceYearlyCents    *int      `db:"price_yearly_cents" json:"price_yearly_cents,omitempty"`
	MaxCheckinsPerMonth *int      `db:"max_checkins_per_month" json:"max_checkins_per_month,omitempty"`
	MaxGymsAccess       *int      `db:"max_gyms_access" json:"max_gyms_access,omitempty"`
	Features            string    `db:"features" json:"-"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// FeaturesList decodes the features JSON column; malformed data reads as
// empty rather than failing a listing.
func (p *Plan) FeaturesList() []string {
	if p.Features == "" {
		return []string{}
	}
	var features []string
	if err := json.Unmarshal([]byte(p.Features), &features); err != nil {
		return []string{}
	}
	return features
}

// SavingsYearlyCents is how much a year of monthly billing would cost over
// the yearly price.
func (p *Plan) SavingsYearlyCents() int {
	if p.PriceYearlyCents == nil {
		return 0
	}
	return p.PriceMonthlyCents*12 - *p.PriceYearlyCents
}

type Subscription struct {
	ID                    int        `db:"id" json:"id"`
	UserID                int        `db:"user_id" json:"user_id"`
	PlanID                int        `db:"plan_id" json:"plan_id"`
	Status                string     `db:"status" json:"status"`
	StartDate             time.Time  `db:"start_date" json:"start_date"`
	EndDate               time.Time  `db:"end_date" json:"end_date"`
	IsYearly              bool       `db:"is_yearly" json:"is_yearly"`
	AutoRenew             bool       `db:"auto_renew" json:"auto_renew"`
	CheckinsUsedThisMonth int        `db:"checkins_used_this_month" json:"checkins_used_this_month"`
	LastBillingDate       *time.Time `db:"last_billing_date" json:"last_billing_date,omitempty"`
	NextBillingDate       *time.Time `db:"next_billing_date" json:"next_billing_date,omitempty"`
	CancelledAt           *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// GrantsAccess reports whether the subscription still covers check-ins.
// Cancelling stops auto-renew but the member keeps access until end_date.
func (s *Subscription) GrantsAccess() bool {
	if s.Status != StatusActive && s.Status != StatusCancelled {
		return false
	}
	return s.EndDate.After(time.Now().UTC())
}

func (s *Subscription) DaysRemaining() int {
	days := int(time.Until(s.EndDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// SubscriptionWithPlan joins the plan columns needed by quota checks and
// member-facing views.
type SubscriptionWithPlan struct {
	Subscription
	PlanName            string `db:"plan_name" json:"plan_name"`
	PlanType            string `db:"plan_type" json:"plan_type"`
	MaxCheckinsPerMonth *int   `db:"max_checkins_per_month" json:"max_checkins_per_month,omitempty"`
	PriceMonthlyCents   int    `db:"price_monthly_cents" json:"price_monthly_cents"`
	PriceYearlyCents    *int   `db:"price_yearly_cents" json:"price_yearly_cents,omitempty"`
}

type Payment struct {
	ID                int        `db:"id" json:"id"`
	SubscriptionID    int        `db:"subscription_id" json:"subscription_id"`
	AmountCents       int        `db:"amount_cents" json:"amount_cents"`
	Currency          string     `db:"currency" json:"currency"`
	Status            string     `db:"status" json:"status"`
	PaymentMethod     string     `db:"payment_method" json:"payment_method"`
	TransactionID     string     `db:"transaction_id" json:"transaction_id"`
	ExternalPaymentID *string    `db:"external_payment_id" json:"external_payment_id,omitempty"`
	PaymentDate       *time.Time `db:"payment_date" json:"payment_date,omitempty"`
	Description       string     `db:"description" json:"description"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// PaymentWithPlan is a payment-history row.
type PaymentWithPlan struct {
	Payment
	PlanName string `db:"plan_name" json:"plan_name"`
}

type SubscribeRequest struct {
	IsYearly      bool   `json:"is_yearly"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	CouponCode    string `json:"coupon_code"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type RenewRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// Limits is the member-facing quota view.
type Limits struct {
	HasSubscription       bool   `json:"has_subscription"`
	PlanName              string `json:"plan_name,omitempty"`
	MaxCheckinsPerMonth   *int   `json:"max_checkins_per_month"`
	CheckinsUsedThisMonth int    `json:"checkins_used_this_month"`
	CheckinsRemaining     *int   `json:"checkins_remaining"`
	CanCheckIn            bool   `json:"can_checkin"`
}

// SubscribeResult reports a settled subscription purchase.
type SubscribeResult struct {
	Subscription  *Subscription `json:"subscription"`
	AmountCents   int           `json:"amount_cents"`
	DiscountCents int           `json:"discount_cents"`
	Payment       *Payment      `json:"payment"`
}

// BillingSummary reports one maintenance billing run.
type BillingSummary struct {
	Renewed    int `json:"renewed"`
	Expired    int `json:"expired"`
	UsageReset int `json:"usage_reset"`
	Failed     int `json:"failed"`
}

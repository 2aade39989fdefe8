package coupon

import "time"

const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

type Coupon struct {
	ID               int       `db:"id" json:"id"`
	Code             string    `db:"code" json:"code"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	CouponType       string    `db:"coupon_type" json:"coupon_type"`
	DiscountValue    int       `db:"discount_value" json:"discount_value"` // percent, or cents for fixed
	MinPurchaseCents *int      `db:"min_purchase_cents" json:"min_purchase_cents,omitempty"`
	MaxDiscountCents *int      `db:"max_discount_cents" json:"max_discount_cents,omitempty"`
	UsageLimit       *int      `db:"usage_limit" json:"usage_limit,omitempty"`
	UsageCount       int       `db:"usage_count" json:"usage_count"`
	UserLimit        int       `db:"user_limit" json:"user_limit"`
	ValidFrom        time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil       time.Time `db:"valid_until" json:"valid_until"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Discount is the outcome of validating a coupon against a purchase.
type Discount struct {
	CouponID      int `json:"coupon_id"`
	OriginalCents int `json:"original_cents"`
	DiscountCents int `json:"discount_cents"`
	FinalCents    int `json:"final_cents"`
}

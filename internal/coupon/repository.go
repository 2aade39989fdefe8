package coupon

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrCouponNotFound = errors.New("coupon not found")

type Repository interface {
	GetActiveByCode(ctx context.Context, code string) (*Coupon, error)
	CountUsesByUser(ctx context.Context, couponID, userID int) (int, error)
	RecordUsage(ctx context.Context, couponID, userID, subscriptionID, paymentID, originalCents, discountCents, finalCents int) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetActiveByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT id, code, name, description, coupon_type, discount_value, min_purchase_cents,
			max_discount_cents, usage_limit, usage_count, user_limit, valid_from, valid_until,
			is_active, created_at
		FROM coupons
		WHERE UPPER(code) = UPPER($1) AND is_active = true
	`

	var coupon Coupon
	err := r.db.GetContext(ctx, &coupon, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) CountUsesByUser(ctx context.Context, couponID, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`, couponID, userID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecordUsage writes the usage row and bumps the coupon counter together.
func (r *repository) RecordUsage(ctx context.Context, couponID, userID, subscriptionID, paymentID, originalCents, discountCents, finalCents int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO coupon_usages (coupon_id, user_id, subscription_id, payment_id, original_cents, discount_cents, final_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, couponID, userID, subscriptionID, paymentID, originalCents, discountCents, finalCents)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE coupons SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`, couponID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

package coupon

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCouponNotActive  = errors.New("coupon is not currently valid")
	ErrCouponExhausted  = errors.New("coupon usage limit reached")
	ErrUserLimitReached = errors.New("coupon already used by this user")
	ErrBelowMinPurchase = errors.New("purchase amount below coupon minimum")
)

type Service interface {
	// Validate checks a code against a purchase amount and returns the
	// computed discount without consuming the coupon.
	Validate(ctx context.Context, code string, userID, amountCents int) (*Discount, error)

	// RecordUsage consumes the coupon after the discounted payment settled.
	RecordUsage(ctx context.Context, discount *Discount, userID, subscriptionID, paymentID int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Validate(ctx context.Context, code string, userID, amountCents int) (*Discount, error) {
	coupon, err := s.repo.GetActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return nil, ErrCouponNotActive
	}

	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return nil, ErrCouponExhausted
	}

	uses, err := s.repo.CountUsesByUser(ctx, coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if uses >= coupon.UserLimit {
		return nil, ErrUserLimitReached
	}

	if coupon.MinPurchaseCents != nil && amountCents < *coupon.MinPurchaseCents {
		return nil, ErrBelowMinPurchase
	}

	discountCents := 0
	switch coupon.CouponType {
	case TypePercentage:
		discountCents = amountCents * coupon.DiscountValue / 100
		if coupon.MaxDiscountCents != nil && discountCents > *coupon.MaxDiscountCents {
			discountCents = *coupon.MaxDiscountCents
		}
	case TypeFixed:
		discountCents = coupon.DiscountValue
	}
	if discountCents > amountCents {
		discountCents = amountCents
	}

	return &Discount{
		CouponID:      coupon.ID,
		OriginalCents: amountCents,
		DiscountCents: discountCents,
		FinalCents:    amountCents - discountCents,
	}, nil
}

func (s *service) RecordUsage(ctx context.Context, discount *Discount, userID, subscriptionID, paymentID int) error {
	return s.repo.RecordUsage(ctx, discount.CouponID, userID, subscriptionID, paymentID,
		discount.OriginalCents, discount.DiscountCents, discount.FinalCents)
}

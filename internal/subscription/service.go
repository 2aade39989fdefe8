package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mechamederoot1/projeto-unipass/internal/audit"
	"github.com/mechamederoot1/projeto-unipass/internal/coupon"
	"github.com/mechamederoot1/projeto-unipass/internal/logger"
	"github.com/mechamederoot1/projeto-unipass/internal/metrics"
	"github.com/mechamederoot1/projeto-unipass/internal/payment"
)

const (
	monthlyPeriod = 30 * 24 * time.Hour
	yearlyPeriod  = 365 * 24 * time.Hour
)

type Service interface {
	Plans(ctx context.Context) ([]Plan, error)
	MySubscription(ctx context.Context, userID int) (*SubscriptionWithPlan, error)
	Subscribe(ctx context.Context, userID, planID int, req SubscribeRequest, ip string) (*SubscribeResult, error)
	Cancel(ctx context.Context, userID int, reason, ip string) (*Subscription, error)
	Renew(ctx context.Context, userID int, paymentMethod, ip string) (*SubscriptionWithPlan, *Payment, error)
	Limits(ctx context.Context, userID int) (*Limits, error)
	PaymentHistory(ctx context.Context, userID, limit int) ([]PaymentWithPlan, error)

	// CanCheckIn and RecordCheckinUsage implement the check-in gate.
	CanCheckIn(ctx context.Context, userID int) error
	RecordCheckinUsage(ctx context.Context, userID int) error

	// RunBillingCycle is invoked by the maintenance runner.
	RunBillingCycle(ctx context.Context) (BillingSummary, error)
}

type service struct {
	repo     Repository
	gateway  payment.Gateway
	coupons  coupon.Service
	auditor  audit.Recorder
	currency string
}

func NewService(repo Repository, gateway payment.Gateway, coupons coupon.Service, auditor audit.Recorder, currency string) Service {
	return &service{
		repo:     repo,
		gateway:  gateway,
		coupons:  coupons,
		auditor:  auditor,
		currency: currency,
	}
}

func (s *service) Plans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListActivePlans(ctx)
}

func (s *service) MySubscription(ctx context.Context, userID int) (*SubscriptionWithPlan, error) {
	return s.repo.GetActiveByUser(ctx, userID)
}

// Subscribe charges the plan price up front and only writes the subscription
// once the charge settled. A gateway failure surfaces as ErrPaymentFailed
// with no rows written.
func (s *service) Subscribe(ctx context.Context, userID, planID int, req SubscribeRequest, ip string) (*SubscribeResult, error) {
	plan, err := s.repo.GetActivePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.GetActiveByUser(ctx, userID)
	if err == nil {
		return nil, ErrActiveSubscriptionExists
	}
	if !errors.Is(err, ErrNoActiveSubscription) {
		return nil, err
	}

	period := monthlyPeriod
	amountCents := plan.PriceMonthlyCents
	cycle := "monthly"
	if req.IsYearly {
		if plan.PriceYearlyCents == nil {
			return nil, ErrYearlyUnavailable
		}
		period = yearlyPeriod
		amountCents = *plan.PriceYearlyCents
		cycle = "yearly"
	}

	var discount *coupon.Discount
	chargeCents := amountCents
	if req.CouponCode != "" {
		discount, err = s.coupons.Validate(ctx, req.CouponCode, userID, amountCents)
		if err != nil {
			return nil, err
		}
		chargeCents = discount.FinalCents
	}

	description := fmt.Sprintf("Subscription to %s (%s)", plan.Name, cycle)
	charge, err := s.charge(ctx, chargeCents, req.PaymentMethod, description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	endDate := now.Add(period)
	sub := &Subscription{
		UserID:          userID,
		PlanID:          planID,
		StartDate:       now,
		EndDate:         endDate,
		IsYearly:        req.IsYearly,
		LastBillingDate: &now,
		NextBillingDate: &endDate,
	}
	pay := s.completedPayment(chargeCents, req.PaymentMethod, description, charge)

	created, createdPayment, err := s.repo.CreateWithPayment(ctx, sub, pay)
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscription(plan.Name)

	if discount != nil {
		if err := s.coupons.RecordUsage(ctx, discount, userID, created.ID, createdPayment.ID); err != nil {
			logger.Errorf("failed to record coupon usage for subscription %d: %v", created.ID, err)
		}
	}

	s.logAudit(ctx, userID, audit.ActionSubscribe, created.ID,
		fmt.Sprintf("Subscribed to %s plan (%s)", plan.Name, cycle), ip)

	discountCents := 0
	if discount != nil {
		discountCents = discount.DiscountCents
	}
	return &SubscribeResult{
		Subscription:  created,
		AmountCents:   chargeCents,
		DiscountCents: discountCents,
		Payment:       createdPayment,
	}, nil
}

// Cancel keeps access until the paid period ends.
func (s *service) Cancel(ctx context.Context, userID int, reason, ip string) (*Subscription, error) {
	sub, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.Cancel(ctx, sub.ID, now); err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "User requested"
	}
	s.logAudit(ctx, userID, audit.ActionCancelSub, sub.ID,
		fmt.Sprintf("Subscription cancelled. Reason: %s", reason), ip)

	sub.Status = StatusCancelled
	sub.AutoRenew = false
	sub.CancelledAt = &now
	return &sub.Subscription, nil
}

// Renew extends from the old end date, not from now, so renewing early never
// shortens the paid period. A cancelled subscription reactivates.
func (s *service) Renew(ctx context.Context, userID int, paymentMethod, ip string) (*SubscriptionWithPlan, *Payment, error) {
	sub, err := s.repo.GetRenewableByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	period := monthlyPeriod
	amountCents := sub.PriceMonthlyCents
	cycle := "monthly"
	if sub.IsYearly {
		if sub.PriceYearlyCents == nil {
			return nil, nil, ErrYearlyUnavailable
		}
		period = yearlyPeriod
		amountCents = *sub.PriceYearlyCents
		cycle = "yearly"
	}

	description := fmt.Sprintf("Subscription renewal (%s)", cycle)
	charge, err := s.charge(ctx, amountCents, paymentMethod, description)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	newEndDate := sub.EndDate.Add(period)
	pay := s.completedPayment(amountCents, paymentMethod, description, charge)

	createdPayment, err := s.repo.Renew(ctx, sub.ID, newEndDate, now, pay)
	if err != nil {
		return nil, nil, err
	}

	s.logAudit(ctx, userID, audit.ActionRenewSub, sub.ID, "Subscription renewed", ip)

	sub.Status = StatusActive
	sub.EndDate = newEndDate
	sub.NextBillingDate = &newEndDate
	sub.LastBillingDate = &now
	sub.AutoRenew = true
	sub.CancelledAt = nil
	sub.CheckinsUsedThisMonth = 0
	return sub, createdPayment, nil
}

func (s *service) Limits(ctx context.Context, userID int) (*Limits, error) {
	sub, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			return &Limits{}, nil
		}
		return nil, err
	}

	limits := &Limits{
		HasSubscription:       true,
		PlanName:              sub.PlanName,
		MaxCheckinsPerMonth:   sub.MaxCheckinsPerMonth,
		CheckinsUsedThisMonth: sub.CheckinsUsedThisMonth,
		CanCheckIn:            s.canCheckIn(sub) == nil,
	}
	if sub.MaxCheckinsPerMonth != nil {
		remaining := *sub.MaxCheckinsPerMonth - sub.CheckinsUsedThisMonth
		if remaining < 0 {
			remaining = 0
		}
		limits.CheckinsRemaining = &remaining
	}
	return limits, nil
}

func (s *service) PaymentHistory(ctx context.Context, userID, limit int) ([]PaymentWithPlan, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListPaymentsByUser(ctx, userID, limit)
}

func (s *service) CanCheckIn(ctx context.Context, userID int) error {
	sub, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.canCheckIn(sub)
}

func (s *service) canCheckIn(sub *SubscriptionWithPlan) error {
	if !sub.GrantsAccess() {
		return ErrNoActiveSubscription
	}
	if sub.MaxCheckinsPerMonth == nil {
		return nil
	}
	if sub.CheckinsUsedThisMonth >= *sub.MaxCheckinsPerMonth {
		return ErrQuotaExceeded
	}
	return nil
}

func (s *service) RecordCheckinUsage(ctx context.Context, userID int) error {
	sub, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.IncrementUsage(ctx, sub.ID)
}

// RunBillingCycle expires lapsed subscriptions, renews the auto-renew ones
// and resets monthly usage counters. Per-row failures are counted and the
// cycle keeps going.
func (s *service) RunBillingCycle(ctx context.Context) (BillingSummary, error) {
	var summary BillingSummary
	now := time.Now().UTC()

	due, err := s.repo.ListDueForAutoRenew(ctx, now)
	if err != nil {
		return summary, err
	}
	for _, sub := range due {
		if err := s.autoRenew(ctx, &sub, now); err != nil {
			logger.Errorf("billing cycle: failed to renew subscription %d: %v", sub.ID, err)
			summary.Failed++
			continue
		}
		summary.Renewed++
	}

	expired, err := s.repo.ExpirePastDue(ctx, now)
	if err != nil {
		return summary, err
	}
	summary.Expired = expired

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	reset, err := s.repo.ResetMonthlyUsage(ctx, monthStart)
	if err != nil {
		return summary, err
	}
	summary.UsageReset = reset

	return summary, nil
}

func (s *service) autoRenew(ctx context.Context, sub *SubscriptionWithPlan, now time.Time) error {
	period := monthlyPeriod
	amountCents := sub.PriceMonthlyCents
	cycle := "monthly"
	if sub.IsYearly {
		if sub.PriceYearlyCents == nil {
			return ErrYearlyUnavailable
		}
		period = yearlyPeriod
		amountCents = *sub.PriceYearlyCents
		cycle = "yearly"
	}

	description := fmt.Sprintf("Automatic subscription renewal (%s)", cycle)
	charge, err := s.charge(ctx, amountCents, "card", description)
	if err != nil {
		return err
	}

	pay := s.completedPayment(amountCents, "card", description, charge)
	_, err = s.repo.Renew(ctx, sub.ID, sub.EndDate.Add(period), now, pay)
	return err
}

func (s *service) charge(ctx context.Context, amountCents int, method, description string) (*payment.ChargeResult, error) {
	charge, err := s.gateway.Charge(ctx, int64(amountCents), method, description)
	if err != nil {
		metrics.RecordPayment("failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	metrics.RecordPayment("completed")
	return charge, nil
}

func (s *service) completedPayment(amountCents int, method, description string, charge *payment.ChargeResult) *Payment {
	now := time.Now().UTC()
	return &Payment{
		AmountCents:       amountCents,
		Currency:          s.currency,
		Status:            PaymentCompleted,
		PaymentMethod:     method,
		TransactionID:     uuid.NewString(),
		ExternalPaymentID: &charge.ExternalID,
		PaymentDate:       &now,
		Description:       description,
	}
}

func (s *service) logAudit(ctx context.Context, userID int, action string, entityID int, description, ip string) {
	entry := audit.Entry{
		UserID:      &userID,
		Action:      action,
		EntityType:  "SUBSCRIPTION",
		EntityID:    &entityID,
		Description: description,
		IPAddress:   ip,
	}
	if err := s.auditor.Record(ctx, entry); err != nil {
		logger.Errorf("failed to write audit entry for subscription %d: %v", entityID, err)
	}
}

package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mechamederoot1/projeto-unipass/internal/audit"
	"github.com/mechamederoot1/projeto-unipass/internal/coupon"
	"github.com/mechamederoot1/projeto-unipass/internal/payment"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListActivePlans(ctx context.Context) ([]Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Plan), args.Error(1)
}

func (m *MockRepository) GetActivePlan(ctx context.Context, id int) (*Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockRepository) GetActiveByUser(ctx context.Context, userID int) (*SubscriptionWithPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithPlan), args.Error(1)
}

func (m *MockRepository) GetRenewableByUser(ctx context.Context, userID int) (*SubscriptionWithPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithPlan), args.Error(1)
}

func (m *MockRepository) CreateWithPayment(ctx context.Context, sub *Subscription, pay *Payment) (*Subscription, *Payment, error) {
	args := m.Called(ctx, sub, pay)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*Subscription), args.Get(1).(*Payment), args.Error(2)
}

func (m *MockRepository) Cancel(ctx context.Context, subscriptionID int, at time.Time) error {
	args := m.Called(ctx, subscriptionID, at)
	return args.Error(0)
}

func (m *MockRepository) Renew(ctx context.Context, subscriptionID int, newEndDate, billedAt time.Time, pay *Payment) (*Payment, error) {
	args := m.Called(ctx, subscriptionID, newEndDate, billedAt, pay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) IncrementUsage(ctx context.Context, subscriptionID int) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *MockRepository) ListPaymentsByUser(ctx context.Context, userID, limit int) ([]PaymentWithPlan, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PaymentWithPlan), args.Error(1)
}

func (m *MockRepository) ExpirePastDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListDueForAutoRenew(ctx context.Context, now time.Time) ([]SubscriptionWithPlan, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SubscriptionWithPlan), args.Error(1)
}

func (m *MockRepository) ResetMonthlyUsage(ctx context.Context, monthStart time.Time) (int, error) {
	args := m.Called(ctx, monthStart)
	return args.Int(0), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, amountCents int64, method, description string) (*payment.ChargeResult, error) {
	args := m.Called(ctx, amountCents, method, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

type MockCoupons struct {
	mock.Mock
}

func (m *MockCoupons) Validate(ctx context.Context, code string, userID, amountCents int) (*coupon.Discount, error) {
	args := m.Called(ctx, code, userID, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Discount), args.Error(1)
}

func (m *MockCoupons) RecordUsage(ctx context.Context, discount *coupon.Discount, userID, subscriptionID, paymentID int) error {
	args := m.Called(ctx, discount, userID, subscriptionID, paymentID)
	return args.Error(0)
}

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func newTestService(repo Repository, gw payment.Gateway, coupons coupon.Service, auditor audit.Recorder) Service {
	return NewService(repo, gw, coupons, auditor, "BRL")
}

func monthlyPlan() *Plan {
	quota := 10
	yearly := 99900
	return &Plan{
		ID:                  1,
		Name:                "Basic",
		PlanType:            "basic",
		PriceMonthlyCents:   9990,
		PriceYearlyCents:    &yearly,
		MaxCheckinsPerMonth: &quota,
		IsActive:            true,
	}
}

func TestSubscribe_Success(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	coupons := new(MockCoupons)
	auditor := new(MockAuditor)
	svc := newTestService(repo, gw, coupons, auditor)

	repo.On("GetActivePlan", mock.Anything, 1).Return(monthlyPlan(), nil)
	repo.On("GetActiveByUser", mock.Anything, 5).Return(nil, ErrNoActiveSubscription)
	gw.On("Charge", mock.Anything, int64(9990), "pm_card", "Subscription to Basic (monthly)").
		Return(&payment.ChargeResult{ExternalID: "pi_123", Status: "succeeded"}, nil)
	repo.On("CreateWithPayment", mock.Anything, mock.MatchedBy(func(s *Subscription) bool {
		return s.UserID == 5 && s.PlanID == 1 && !s.IsYearly &&
			s.EndDate.Sub(s.StartDate) == 30*24*time.Hour
	}), mock.MatchedBy(func(p *Payment) bool {
		return p.AmountCents == 9990 && p.Status == PaymentCompleted &&
			p.TransactionID != "" && *p.ExternalPaymentID == "pi_123"
	})).Return(&Subscription{ID: 9, UserID: 5, PlanID: 1, Status: StatusActive}, &Payment{ID: 3, AmountCents: 9990}, nil)
	auditor.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Subscribe(context.Background(), 5, 1, SubscribeRequest{PaymentMethod: "pm_card"}, "10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, 9, result.Subscription.ID)
	assert.Equal(t, 9990, result.AmountCents)
	repo.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestSubscribe_ConflictWithExisting(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	svc := newTestService(repo, gw, new(MockCoupons), new(MockAuditor))

	repo.On("GetActivePlan", mock.Anything, 1).Return(monthlyPlan(), nil)
	repo.On("GetActiveByUser", mock.Anything, 5).
		Return(&SubscriptionWithPlan{Subscription: Subscription{ID: 2, Status: StatusActive}}, nil)

	_, err := svc.Subscribe(context.Background(), 5, 1, SubscribeRequest{PaymentMethod: "pm_card"}, "")
	assert.ErrorIs(t, err, ErrActiveSubscriptionExists)
	gw.AssertNotCalled(t, "Charge")
}

func TestSubscribe_PaymentFailureWritesNothing(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	svc := newTestService(repo, gw, new(MockCoupons), new(MockAuditor))

	repo.On("GetActivePlan", mock.Anything, 1).Return(monthlyPlan(), nil)
	repo.On("GetActiveByUser", mock.Anything, 5).Return(nil, ErrNoActiveSubscription)
	gw.On("Charge", mock.Anything, int64(9990), "pm_card", mock.Anything).
		Return(nil, payment.ErrChargeDeclined)

	_, err := svc.Subscribe(context.Background(), 5, 1, SubscribeRequest{PaymentMethod: "pm_card"}, "")
	assert.ErrorIs(t, err, ErrPaymentFailed)
	repo.AssertNotCalled(t, "CreateWithPayment")
}

func TestSubscribe_CouponDiscountsCharge(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	coupons := new(MockCoupons)
	auditor := new(MockAuditor)
	svc := newTestService(repo, gw, coupons, auditor)

	repo.On("GetActivePlan", mock.Anything, 1).Return(monthlyPlan(), nil)
	repo.On("GetActiveByUser", mock.Anything, 5).Return(nil, ErrNoActiveSubscription)
	coupons.On("Validate", mock.Anything, "WELCOME10", 5, 9990).
		Return(&coupon.Discount{CouponID: 1, OriginalCents: 9990, DiscountCents: 999, FinalCents: 8991}, nil)
	gw.On("Charge", mock.Anything, int64(8991), "pm_card", mock.Anything).
		Return(&payment.ChargeResult{ExternalID: "pi_1"}, nil)
	repo.On("CreateWithPayment", mock.Anything, mock.Anything, mock.Anything).
		Return(&Subscription{ID: 9}, &Payment{ID: 3}, nil)
	coupons.On("RecordUsage", mock.Anything, mock.Anything, 5, 9, 3).Return(nil)
	auditor.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Subscribe(context.Background(), 5, 1,
		SubscribeRequest{PaymentMethod: "pm_card", CouponCode: "WELCOME10"}, "")
	assert.NoError(t, err)
	assert.Equal(t, 8991, result.AmountCents)
	assert.Equal(t, 999, result.DiscountCents)
	coupons.AssertExpectations(t)
}

func TestRenew_ExtendsFromOldEndDate(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	auditor := new(MockAuditor)
	svc := newTestService(repo, gw, new(MockCoupons), auditor)

	// still 10 days of paid access left
	oldEnd := time.Now().UTC().Add(10 * 24 * time.Hour)
	repo.On("GetRenewableByUser", mock.Anything, 5).Return(&SubscriptionWithPlan{
		Subscription:      Subscription{ID: 9, UserID: 5, Status: StatusActive, EndDate: oldEnd},
		PlanName:          "Basic",
		PriceMonthlyCents: 9990,
	}, nil)
	gw.On("Charge", mock.Anything, int64(9990), "pm_card", mock.Anything).
		Return(&payment.ChargeResult{ExternalID: "pi_2"}, nil)
	repo.On("Renew", mock.Anything, 9, oldEnd.Add(30*24*time.Hour), mock.Anything, mock.Anything).
		Return(&Payment{ID: 4, AmountCents: 9990}, nil)
	auditor.On("Record", mock.Anything, mock.Anything).Return(nil)

	sub, pay, err := svc.Renew(context.Background(), 5, "pm_card", "")
	assert.NoError(t, err)
	// renewing early keeps the remaining days: new end is old end + 30d
	assert.Equal(t, oldEnd.Add(30*24*time.Hour), sub.EndDate)
	assert.Equal(t, 9990, pay.AmountCents)
	repo.AssertExpectations(t)
}

func TestCanCheckIn_QuotaExceeded(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), new(MockCoupons), new(MockAuditor))

	quota := 10
	repo.On("GetActiveByUser", mock.Anything, 5).Return(&SubscriptionWithPlan{
		Subscription: Subscription{
			Status:                StatusActive,
			EndDate:               time.Now().UTC().Add(24 * time.Hour),
			CheckinsUsedThisMonth: 10,
		},
		MaxCheckinsPerMonth: &quota,
	}, nil)

	err := svc.CanCheckIn(context.Background(), 5)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestCanCheckIn_UnlimitedPlan(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), new(MockCoupons), new(MockAuditor))

	repo.On("GetActiveByUser", mock.Anything, 5).Return(&SubscriptionWithPlan{
		Subscription: Subscription{
			Status:                StatusActive,
			EndDate:               time.Now().UTC().Add(24 * time.Hour),
			CheckinsUsedThisMonth: 500,
		},
	}, nil)

	assert.NoError(t, svc.CanCheckIn(context.Background(), 5))
}

func TestCanCheckIn_CancelledKeepsAccessUntilEndDate(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), new(MockCoupons), new(MockAuditor))

	repo.On("GetActiveByUser", mock.Anything, 5).Return(&SubscriptionWithPlan{
		Subscription: Subscription{
			Status:  StatusCancelled,
			EndDate: time.Now().UTC().Add(10 * 24 * time.Hour),
		},
	}, nil)

	assert.NoError(t, svc.CanCheckIn(context.Background(), 5))
}

func TestCanCheckIn_CancelledAndLapsed(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), new(MockCoupons), new(MockAuditor))

	repo.On("GetActiveByUser", mock.Anything, 5).Return(&SubscriptionWithPlan{
		Subscription: Subscription{
			Status:  StatusCancelled,
			EndDate: time.Now().UTC().Add(-time.Hour),
		},
	}, nil)

	err := svc.CanCheckIn(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestCanCheckIn_ExpiredPeriod(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), new(MockCoupons), new(MockAuditor))

	repo.On("GetActiveByUser", mock.Anything, 5).Return(&SubscriptionWithPlan{
		Subscription: Subscription{
			Status:  StatusActive,
			EndDate: time.Now().UTC().Add(-time.Hour),
		},
	}, nil)

	err := svc.CanCheckIn(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestLimits_NoSubscription(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), new(MockCoupons), new(MockAuditor))

	repo.On("GetActiveByUser", mock.Anything, 5).Return(nil, ErrNoActiveSubscription)

	limits, err := svc.Limits(context.Background(), 5)
	assert.NoError(t, err)
	assert.False(t, limits.HasSubscription)
	assert.False(t, limits.CanCheckIn)
}

func TestRunBillingCycle_RenewFailureIsCounted(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	svc := newTestService(repo, gw, new(MockCoupons), new(MockAuditor))

	end := time.Now().UTC().Add(-time.Hour)
	repo.On("ListDueForAutoRenew", mock.Anything, mock.Anything).Return([]SubscriptionWithPlan{
		{Subscription: Subscription{ID: 1, EndDate: end, AutoRenew: true}, PriceMonthlyCents: 9990},
		{Subscription: Subscription{ID: 2, EndDate: end, AutoRenew: true}, PriceMonthlyCents: 9990},
	}, nil)
	gw.On("Charge", mock.Anything, int64(9990), "card", mock.Anything).
		Return(&payment.ChargeResult{ExternalID: "pi_ok"}, nil).Once()
	repo.On("Renew", mock.Anything, 1, mock.Anything, mock.Anything, mock.Anything).
		Return(&Payment{ID: 10}, nil)
	gw.On("Charge", mock.Anything, int64(9990), "card", mock.Anything).
		Return(nil, payment.ErrChargeDeclined).Once()
	repo.On("ExpirePastDue", mock.Anything, mock.Anything).Return(3, nil)
	repo.On("ResetMonthlyUsage", mock.Anything, mock.Anything).Return(7, nil)

	summary, err := svc.RunBillingCycle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Renewed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Expired)
	assert.Equal(t, 7, summary.UsageReset)
}

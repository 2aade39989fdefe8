package maintenance

import (
	"context"
	"time"

	"github.com/mechamederoot1/projeto-unipass/internal/checkin"
	"github.com/mechamederoot1/projeto-unipass/internal/logger"
	"github.com/mechamederoot1/projeto-unipass/internal/subscription"
)

// StaleSweeper force-closes check-ins that were left open past the stale
// window.
type StaleSweeper interface {
	SweepStale(ctx context.Context) (checkin.SweepResult, error)
}

// BillingRunner expires, renews and resets subscriptions that are due.
type BillingRunner interface {
	RunBillingCycle(ctx context.Context) (subscription.BillingSummary, error)
}

// Runner drives the periodic background jobs. It runs in its own goroutine
// until the context is cancelled.
type Runner struct {
	sweeper         StaleSweeper
	billing         BillingRunner
	sweepInterval   time.Duration
	billingInterval time.Duration
}

func New(sweeper StaleSweeper, billing BillingRunner, sweepInterval, billingInterval time.Duration) *Runner {
	return &Runner{
		sweeper:         sweeper,
		billing:         billing,
		sweepInterval:   sweepInterval,
		billingInterval: billingInterval,
	}
}

func (r *Runner) Start(ctx context.Context) {
	logger.Infof("Maintenance runner started (sweep every %s, billing every %s)",
		r.sweepInterval, r.billingInterval)

	sweepTicker := time.NewTicker(r.sweepInterval)
	defer sweepTicker.Stop()
	billingTicker := time.NewTicker(r.billingInterval)
	defer billingTicker.Stop()

	// Run both once at startup so a restart does not delay overdue work.
	r.runSweep(ctx)
	r.runBilling(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Maintenance runner stopped")
			return
		case <-sweepTicker.C:
			r.runSweep(ctx)
		case <-billingTicker.C:
			r.runBilling(ctx)
		}
	}
}

func (r *Runner) runSweep(ctx context.Context) {
	result, err := r.sweeper.SweepStale(ctx)
	if err != nil {
		logger.Errorf("Stale check-in sweep failed: %v", err)
		return
	}
	if result.Closed > 0 {
		logger.Infof("Stale check-in sweep closed %d check-ins (%d skipped)",
			result.Closed, result.Skipped)
	}
}

func (r *Runner) runBilling(ctx context.Context) {
	summary, err := r.billing.RunBillingCycle(ctx)
	if err != nil {
		logger.Errorf("Billing cycle failed: %v", err)
		return
	}
	logger.Infof("Billing cycle done: renewed=%d failed=%d expired=%d usage_reset=%d",
		summary.Renewed, summary.Failed, summary.Expired, summary.UsageReset)
}

package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mechamederoot1/projeto-unipass/internal/audit"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
	"github.com/mechamederoot1/projeto-unipass/internal/logger"
	"github.com/mechamederoot1/projeto-unipass/internal/metrics"
)

var ErrForbidden = errors.New("not allowed to manage check-ins for this gym")

// SubscriptionChecker gates check-ins on the member's plan.
type SubscriptionChecker interface {
	CanCheckIn(ctx context.Context, userID int) error
	RecordCheckinUsage(ctx context.Context, userID int) error
}

// PointsAwarder credits gamification points for a completed check-in.
type PointsAwarder interface {
	AwardCheckinPoints(ctx context.Context, userID, checkinID, gymID int) error
}

type Service interface {
	CheckIn(ctx context.Context, userID, gymID int) (*CheckIn, error)
	CheckOut(ctx context.Context, userID, checkinID int) (*CheckIn, error)
	ForceCheckOut(ctx context.Context, actor auth.Actor, checkinID int, reason, ip string) (*CheckIn, error)
	GetActive(ctx context.Context, userID int) (*CheckIn, error)
	History(ctx context.Context, userID, limit int) ([]CheckInWithGym, error)
	ActiveByGym(ctx context.Context, gymID int) ([]ActiveEntry, error)
	SweepStale(ctx context.Context) (SweepResult, error)
}

type service struct {
	repo        Repository
	subs        SubscriptionChecker
	points      PointsAwarder
	auditor     audit.Recorder
	staleWindow time.Duration
}

func NewService(repo Repository, subs SubscriptionChecker, points PointsAwarder, auditor audit.Recorder, staleWindow time.Duration) Service {
	return &service{
		repo:        repo,
		subs:        subs,
		points:      points,
		auditor:     auditor,
		staleWindow: staleWindow,
	}
}

// CheckIn resolves the gym, validates the member's subscription, opens the
// visit atomically with the occupancy increment, then records plan usage and
// awards points. The gym lookup runs first so an unknown gym answers
// not-found rather than a subscription error. The two follow-up writes are
// soft: a failure there never rolls back an already-open visit.
func (s *service) CheckIn(ctx context.Context, userID, gymID int) (*CheckIn, error) {
	if err := s.repo.VerifyGym(ctx, gymID); err != nil {
		metrics.RecordCheckin("rejected")
		return nil, err
	}
	if err := s.subs.CanCheckIn(ctx, userID); err != nil {
		metrics.RecordCheckin("rejected")
		return nil, err
	}

	checkin, occupancy, err := s.repo.CreateWithOccupancy(ctx, userID, gymID)
	if err != nil {
		metrics.RecordCheckin("rejected")
		return nil, err
	}

	metrics.RecordCheckin("success")
	metrics.SetGymOccupancy(gymID, occupancy)

	if err := s.subs.RecordCheckinUsage(ctx, userID); err != nil {
		logger.Errorf("failed to record plan usage for user %d: %v", userID, err)
	}
	if err := s.points.AwardCheckinPoints(ctx, userID, checkin.ID, gymID); err != nil {
		logger.Errorf("failed to award points for user %d: %v", userID, err)
	}

	return checkin, nil
}

func (s *service) CheckOut(ctx context.Context, userID, checkinID int) (*CheckIn, error) {
	checkin, occupancy, err := s.repo.CloseWithOccupancy(ctx, checkinID, &userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.RecordCheckout("user")
	metrics.SetGymOccupancy(checkin.GymID, occupancy)
	return checkin, nil
}

// ForceCheckOut closes someone else's visit. The actor must be allowed to
// manage the visit's gym; the action is audit-logged.
func (s *service) ForceCheckOut(ctx context.Context, actor auth.Actor, checkinID int, reason, ip string) (*CheckIn, error) {
	checkin, err := s.repo.GetActiveByID(ctx, checkinID)
	if err != nil {
		return nil, err
	}

	if !auth.HasPermission(actor, auth.ActionManageGym, auth.Scope{GymID: checkin.GymID}) {
		return nil, ErrForbidden
	}

	closed, occupancy, err := s.repo.CloseWithOccupancy(ctx, checkinID, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.RecordCheckout("forced")
	metrics.SetGymOccupancy(closed.GymID, occupancy)

	if reason == "" {
		reason = "Forced by gym admin"
	}
	entry := audit.Entry{
		UserID:      &actor.UserID,
		Action:      audit.ActionForceCheckout,
		EntityType:  "CHECKIN",
		EntityID:    &closed.ID,
		Description: fmt.Sprintf("Forced checkout. Reason: %s", reason),
		IPAddress:   ip,
	}
	if err := s.auditor.Record(ctx, entry); err != nil {
		logger.Errorf("failed to write audit entry for force checkout %d: %v", closed.ID, err)
	}

	return closed, nil
}

func (s *service) GetActive(ctx context.Context, userID int) (*CheckIn, error) {
	return s.repo.GetActiveByUser(ctx, userID)
}

func (s *service) History(ctx context.Context, userID, limit int) ([]CheckInWithGym, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *service) ActiveByGym(ctx context.Context, gymID int) ([]ActiveEntry, error) {
	return s.repo.ListActiveByGym(ctx, gymID)
}

// SweepStale closes visits left open longer than the configured window. The
// checkout time is clamped to checkin_time plus the window so abandoned
// visits never accrue unbounded duration. Rows that fail to close are
// skipped, not fatal.
func (s *service) SweepStale(ctx context.Context) (SweepResult, error) {
	cutoff := time.Now().UTC().Add(-s.staleWindow)

	stale, err := s.repo.ListStaleActive(ctx, cutoff)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	for _, c := range stale {
		checkoutTime := c.CheckinTime.Add(s.staleWindow)
		closed, occupancy, err := s.repo.CloseWithOccupancy(ctx, c.ID, nil, checkoutTime)
		if err != nil {
			logger.Errorf("stale sweep: failed to close check-in %d: %v", c.ID, err)
			result.Skipped++
			continue
		}
		metrics.RecordCheckout("stale")
		metrics.SetGymOccupancy(closed.GymID, occupancy)
		result.Closed++
	}

	if result.Closed > 0 {
		metrics.RecordStaleSweep(result.Closed)
	}
	return result, nil
}

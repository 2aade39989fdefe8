package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/mechamederoot1/projeto-unipass/internal/logger"
	"github.com/mechamederoot1/projeto-unipass/internal/metrics"
)

type Service interface {
	Points(ctx context.Context, userID int) (*UserPoints, error)
	Achievements(ctx context.Context, userID int) ([]AchievementStatus, error)
	Leaderboard(ctx context.Context, viewerID int, period string, limit int) (*Leaderboard, error)
	History(ctx context.Context, userID, limit int) ([]PointHistory, error)
	AwardForCheckin(ctx context.Context, userID, checkinID int) (*AwardResult, error)
	AwardCheckinPoints(ctx context.Context, userID, checkinID, gymID int) error
	CreditPoints(ctx context.Context, userID, points int, reason, description string) error
	EvaluateAchievements(ctx context.Context, userID int) ([]Achievement, error)
}

type service struct {
	repo  Repository
	cache *LeaderboardCache
}

func NewService(repo Repository, cache *LeaderboardCache) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) Points(ctx context.Context, userID int) (*UserPoints, error) {
	return s.repo.GetOrCreatePoints(ctx, userID)
}

// AwardForCheckin credits the base award plus any streak bonus for the
// given visit, then re-evaluates achievements. Streak progress is keyed
// by calendar day: a second visit on the same day never increments the
// streak again.
func (s *service) AwardForCheckin(ctx context.Context, userID, checkinID int) (*AwardResult, error) {
	ref, err := s.repo.GetCheckinForUser(ctx, checkinID, userID)
	if err != nil {
		return nil, err
	}

	points, err := s.repo.GetOrCreatePoints(ctx, userID)
	if err != nil {
		return nil, err
	}

	alreadyCounted := points.LastCheckinDate != nil && sameDay(*points.LastCheckinDate, ref.CheckinTime)
	if !alreadyCounted {
		if err := s.advanceStreak(ctx, userID, points, ref.CheckinTime); err != nil {
			return nil, err
		}
	}

	award := BaseCheckinPoints + streakBonus(points.CurrentStreak)

	checkinTime := ref.CheckinTime
	points.LastCheckinDate = &checkinTime
	levelUp := points.AddPoints(award)

	if err := s.repo.SavePoints(ctx, points); err != nil {
		return nil, err
	}

	entityType := "CHECKIN"
	entityID := ref.ID
	if err := s.repo.AddHistory(ctx, PointHistory{
		UserPointsID:      points.ID,
		PointsChange:      award,
		Reason:            ReasonCheckin,
		Description:       "Check-in points and streak bonus",
		RelatedEntityType: &entityType,
		RelatedEntityID:   &entityID,
	}); err != nil {
		return nil, err
	}
	metrics.RecordPoints(ReasonCheckin, award)

	newAchievements, err := s.evaluateAchievements(ctx, userID, points)
	if err != nil {
		logger.Errorf("failed to evaluate achievements for user %d: %v", userID, err)
		newAchievements = []Achievement{}
	}

	return &AwardResult{
		PointsAwarded:   award,
		TotalPoints:     points.TotalPoints,
		Level:           points.Level,
		LevelUp:         levelUp,
		CurrentStreak:   points.CurrentStreak,
		NewAchievements: newAchievements,
	}, nil
}

// AwardCheckinPoints is the hook the check-in flow calls after opening a
// visit.
func (s *service) AwardCheckinPoints(ctx context.Context, userID, checkinID, gymID int) error {
	_, err := s.AwardForCheckin(ctx, userID, checkinID)
	return err
}

// CreditPoints applies an out-of-band award, for activity other than
// check-ins. Streak state is untouched.
func (s *service) CreditPoints(ctx context.Context, userID, points int, reason, description string) error {
	if points == 0 {
		return nil
	}

	record, err := s.repo.GetOrCreatePoints(ctx, userID)
	if err != nil {
		return err
	}

	record.AddPoints(points)
	if err := s.repo.SavePoints(ctx, record); err != nil {
		return err
	}

	if err := s.repo.AddHistory(ctx, PointHistory{
		UserPointsID: record.ID,
		PointsChange: points,
		Reason:       reason,
		Description:  description,
	}); err != nil {
		return err
	}
	metrics.RecordPoints(reason, points)
	return nil
}

// advanceStreak moves the streak forward when the previous visit day was
// exactly yesterday, otherwise restarts it at 1.
func (s *service) advanceStreak(ctx context.Context, userID int, points *UserPoints, checkinTime time.Time) error {
	yesterday := checkinTime.AddDate(0, 0, -1)

	continued := points.LastCheckinDate != nil && sameDay(*points.LastCheckinDate, yesterday)
	if !continued {
		var err error
		continued, err = s.repo.HasCheckinOnDay(ctx, userID, yesterday)
		if err != nil {
			return err
		}
	}

	if continued {
		points.CurrentStreak++
	} else {
		points.CurrentStreak = 1
	}
	if points.CurrentStreak > points.LongestStreak {
		points.LongestStreak = points.CurrentStreak
	}
	return nil
}

func (s *service) EvaluateAchievements(ctx context.Context, userID int) ([]Achievement, error) {
	points, err := s.repo.GetOrCreatePoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.evaluateAchievements(ctx, userID, points)
}

// evaluateAchievements awards every active achievement whose condition the
// user now meets and was not earned before. Rewards go through the same
// points path, so they show up in the history and in windowed leaderboards.
func (s *service) evaluateAchievements(ctx context.Context, userID int, points *UserPoints) ([]Achievement, error) {
	active, err := s.repo.ListActiveAchievements(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.repo.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnedIDs := make(map[int]bool, len(earned))
	for _, ua := range earned {
		earnedIDs[ua.AchievementID] = true
	}

	newAchievements := []Achievement{}
	rewarded := false

	for _, a := range active {
		if earnedIDs[a.ID] {
			continue
		}

		progress, err := s.achievementProgress(ctx, userID, points, a)
		if err != nil {
			return nil, err
		}
		if progress < a.ConditionValue {
			continue
		}

		if err := s.repo.AwardAchievement(ctx, userID, a.ID); err != nil {
			return nil, err
		}

		if a.PointsReward > 0 {
			points.AddPoints(a.PointsReward)
			rewarded = true

			entityType := "ACHIEVEMENT"
			entityID := a.ID
			if err := s.repo.AddHistory(ctx, PointHistory{
				UserPointsID:      points.ID,
				PointsChange:      a.PointsReward,
				Reason:            ReasonAchievement,
				Description:       fmt.Sprintf("Achievement unlocked: %s", a.Name),
				RelatedEntityType: &entityType,
				RelatedEntityID:   &entityID,
			}); err != nil {
				return nil, err
			}
			metrics.RecordPoints(ReasonAchievement, a.PointsReward)
		}

		metrics.RecordAchievement()
		logger.Infof("user %d unlocked achievement %q", userID, a.Name)
		newAchievements = append(newAchievements, a)
	}

	if rewarded {
		if err := s.repo.SavePoints(ctx, points); err != nil {
			return nil, err
		}
	}
	return newAchievements, nil
}

func (s *service) achievementProgress(ctx context.Context, userID int, points *UserPoints, a Achievement) (int, error) {
	switch a.ConditionType {
	case ConditionCheckinCount:
		return s.repo.CountCheckins(ctx, userID)
	case ConditionStreakDays:
		return points.LongestStreak, nil
	case ConditionUniqueGyms:
		return s.repo.CountUniqueGyms(ctx, userID)
	default:
		return 0, nil
	}
}

func (s *service) Achievements(ctx context.Context, userID int) ([]AchievementStatus, error) {
	active, err := s.repo.ListActiveAchievements(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.repo.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnedAt := make(map[int]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	points, err := s.repo.GetOrCreatePoints(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]AchievementStatus, 0, len(active))
	for _, a := range active {
		status := AchievementStatus{Achievement: a}

		if when, ok := earnedAt[a.ID]; ok {
			status.IsEarned = true
			earned := when
			status.EarnedAt = &earned
			status.Progress = a.ConditionValue
			status.ProgressPercentage = 100
		} else {
			progress, err := s.achievementProgress(ctx, userID, points, a)
			if err != nil {
				return nil, err
			}
			status.Progress = progress
			if a.ConditionValue > 0 {
				pct := float64(progress) / float64(a.ConditionValue) * 100
				if pct > 100 {
					pct = 100
				}
				status.ProgressPercentage = pct
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Leaderboard returns the ranked board for the period, serving repeated
// reads from the cache. Viewer annotations are applied per request and
// never cached.
func (s *service) Leaderboard(ctx context.Context, viewerID int, period string, limit int) (*Leaderboard, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	switch period {
	case PeriodMonthly, PeriodWeekly:
	default:
		period = PeriodAllTime
	}

	entries, err := s.cache.Get(ctx, period, limit)
	if err != nil {
		logger.Errorf("leaderboard cache read failed: %v", err)
	}

	if entries == nil {
		entries, err = s.loadLeaderboard(ctx, period, limit)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, period, limit, entries); err != nil {
			logger.Errorf("leaderboard cache write failed: %v", err)
		}
	}

	board := &Leaderboard{Entries: make([]LeaderboardEntry, len(entries)), Period: period}
	for i, entry := range entries {
		entry.Position = i + 1
		entry.IsCurrentUser = entry.UserID == viewerID
		if entry.IsCurrentUser {
			pos := i + 1
			board.CurrentUserPosition = &pos
		}
		board.Entries[i] = entry
	}
	return board, nil
}

func (s *service) loadLeaderboard(ctx context.Context, period string, limit int) ([]LeaderboardEntry, error) {
	now := time.Now().UTC()
	switch period {
	case PeriodMonthly:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return s.repo.WindowedLeaderboard(ctx, monthStart, limit)
	case PeriodWeekly:
		return s.repo.WindowedLeaderboard(ctx, now.AddDate(0, 0, -7), limit)
	default:
		return s.repo.AllTimeLeaderboard(ctx, limit)
	}
}

func (s *service) History(ctx context.Context, userID, limit int) ([]PointHistory, error) {
	points, err := s.repo.GetOrCreatePoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, points.ID, limit)
}

func streakBonus(streak int) int {
	bonus := streak * 2
	if bonus > MaxStreakBonus {
		return MaxStreakBonus
	}
	return bonus
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

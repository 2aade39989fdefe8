package gamification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrCheckinNotFound = errors.New("checkin not found")

const pointsColumns = `id, user_id, total_points, current_streak, longest_streak,
		last_checkin_date, level, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetOrCreatePoints returns the user's points row, creating an empty one
// on first contact with the gamification layer.
func (r *repository) GetOrCreatePoints(ctx context.Context, userID int) (*UserPoints, error) {
	var points UserPoints
	err := r.db.GetContext(ctx, &points,
		`SELECT `+pointsColumns+` FROM user_points WHERE user_id = $1`, userID)
	if err == nil {
		return &points, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user points: %w", err)
	}

	err = r.db.GetContext(ctx, &points,
		`INSERT INTO user_points (user_id, total_points, current_streak, longest_streak, level)
		 VALUES ($1, 0, 0, 0, 1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING `+pointsColumns, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user points: %w", err)
	}
	return &points, nil
}

func (r *repository) SavePoints(ctx context.Context, points *UserPoints) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_points
		 SET total_points = $1, current_streak = $2, longest_streak = $3,
		     last_checkin_date = $4, level = $5, updated_at = NOW()
		 WHERE id = $6`,
		points.TotalPoints, points.CurrentStreak, points.LongestStreak,
		points.LastCheckinDate, points.Level, points.ID)
	if err != nil {
		return fmt.Errorf("failed to save user points: %w", err)
	}
	return nil
}

func (r *repository) AddHistory(ctx context.Context, entry PointHistory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO point_history (user_points_id, points_change, reason, description, related_entity_type, related_entity_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.UserPointsID, entry.PointsChange, entry.Reason, entry.Description,
		entry.RelatedEntityType, entry.RelatedEntityID)
	if err != nil {
		return fmt.Errorf("failed to add point history: %w", err)
	}
	return nil
}

func (r *repository) ListHistory(ctx context.Context, userPointsID, limit int) ([]PointHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	history := []PointHistory{}
	err := r.db.SelectContext(ctx, &history,
		`SELECT id, user_points_id, points_change, reason, description, related_entity_type, related_entity_id, created_at
		 FROM point_history
		 WHERE user_points_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userPointsID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list point history: %w", err)
	}
	return history, nil
}

func (r *repository) ListActiveAchievements(ctx context.Context) ([]Achievement, error) {
	achievements := []Achievement{}
	err := r.db.SelectContext(ctx, &achievements,
		`SELECT id, name, description, icon, points_reward, condition_type, condition_value, is_active, created_at
		 FROM achievements
		 WHERE is_active = true
		 ORDER BY condition_value ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

func (r *repository) ListUserAchievements(ctx context.Context, userID int) ([]UserAchievement, error) {
	earned := []UserAchievement{}
	err := r.db.SelectContext(ctx, &earned,
		`SELECT id, user_id, achievement_id, earned_at, notified
		 FROM user_achievements
		 WHERE user_id = $1
		 ORDER BY earned_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user achievements: %w", err)
	}
	return earned, nil
}

func (r *repository) AwardAchievement(ctx context.Context, userID, achievementID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_achievements (user_id, achievement_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		userID, achievementID)
	if err != nil {
		return fmt.Errorf("failed to award achievement: %w", err)
	}
	return nil
}

func (r *repository) GetCheckinForUser(ctx context.Context, checkinID, userID int) (*CheckinRef, error) {
	var ref CheckinRef
	err := r.db.GetContext(ctx, &ref,
		`SELECT id, gym_id, checkin_time FROM checkins WHERE id = $1 AND user_id = $2`,
		checkinID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCheckinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkin: %w", err)
	}
	return &ref, nil
}

func (r *repository) CountCheckins(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM checkins WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count checkins: %w", err)
	}
	return count, nil
}

func (r *repository) CountUniqueGyms(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(DISTINCT gym_id) FROM checkins WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique gyms: %w", err)
	}
	return count, nil
}

// HasCheckinOnDay reports whether the user checked in at any point during
// the calendar day containing the given time.
func (r *repository) HasCheckinOnDay(ctx context.Context, userID int, day time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM checkins WHERE user_id = $1 AND checkin_time::date = $2::date)`,
		userID, day)
	if err != nil {
		return false, fmt.Errorf("failed to check daily checkin: %w", err)
	}
	return exists, nil
}

func (r *repository) AllTimeLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	entries := []LeaderboardEntry{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT up.user_id, u.name, up.total_points AS points, up.level
		 FROM user_points up
		 JOIN users u ON u.id = up.user_id
		 ORDER BY up.total_points DESC, up.user_id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// WindowedLeaderboard ranks users by positive point gains since the given
// instant. Point history is the source of truth for windowed sums, so
// achievement rewards inside the window count too.
func (r *repository) WindowedLeaderboard(ctx context.Context, since time.Time, limit int) ([]LeaderboardEntry, error) {
	entries := []LeaderboardEntry{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT up.user_id, u.name, COALESCE(SUM(ph.points_change), 0) AS points
		 FROM point_history ph
		 JOIN user_points up ON up.id = ph.user_points_id
		 JOIN users u ON u.id = up.user_id
		 WHERE ph.created_at >= $1 AND ph.points_change > 0
		 GROUP BY up.user_id, u.name
		 ORDER BY points DESC, up.user_id ASC
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load windowed leaderboard: %w", err)
	}
	return entries, nil
}

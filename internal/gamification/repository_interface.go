package gamification

import (
	"context"
	"time"
)

type Repository interface {
	GetOrCreatePoints(ctx context.Context, userID int) (*UserPoints, error)
	SavePoints(ctx context.Context, points *UserPoints) error
	AddHistory(ctx context.Context, entry PointHistory) error
	ListHistory(ctx context.Context, userPointsID, limit int) ([]PointHistory, error)

	ListActiveAchievements(ctx context.Context) ([]Achievement, error)
	ListUserAchievements(ctx context.Context, userID int) ([]UserAchievement, error)
	AwardAchievement(ctx context.Context, userID, achievementID int) error

	GetCheckinForUser(ctx context.Context, checkinID, userID int) (*CheckinRef, error)
	CountCheckins(ctx context.Context, userID int) (int, error)
	CountUniqueGyms(ctx context.Context, userID int) (int, error)
	HasCheckinOnDay(ctx context.Context, userID int, day time.Time) (bool, error)

	AllTimeLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	WindowedLeaderboard(ctx context.Context, since time.Time, limit int) ([]LeaderboardEntry, error)
}

package admin

import (
	"context"
	"time"
)

type Repository interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	TopGyms(ctx context.Context, since time.Time, limit int) ([]TopGym, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error)

	ListUsers(ctx context.Context, page, limit int, search string) ([]UserRow, int, error)
	ListGyms(ctx context.Context, page, limit int, search string) ([]GymRow, int, error)
	ToggleUserStatus(ctx context.Context, userID int) (bool, error)
	ToggleGymStatus(ctx context.Context, gymID int) (bool, error)

	DailyCheckins(ctx context.Context, since time.Time) ([]DatedCount, error)
	DailySignups(ctx context.Context, since time.Time) ([]DatedCount, error)
	DailyRevenue(ctx context.Context, since time.Time) ([]DatedRevenue, error)

	GymStats(ctx context.Context, gymID int) (*GymStats, error)
	HourlyDistribution(ctx context.Context, gymID int, since time.Time) ([]HourCount, error)
	DailyTrend(ctx context.Context, gymID int, days int) ([]DatedCount, error)
	CheckinsReport(ctx context.Context, gymID int, start, end time.Time) ([]ReportRow, error)
}

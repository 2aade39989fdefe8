package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrGymNotFound  = errors.New("gym not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_active = true) AS total_users,
			(SELECT COUNT(*) FROM gyms WHERE is_active = true) AS total_gyms,
			(SELECT COUNT(*) FROM subscriptions WHERE status = 'active') AS active_subscriptions,
			(SELECT COUNT(*) FROM checkins WHERE checkin_time::date = CURRENT_DATE) AS today_checkins,
			(SELECT COUNT(*) FROM users WHERE created_at >= NOW() - INTERVAL '7 days') AS new_users_week,
			(SELECT COALESCE(SUM(amount_cents), 0) FROM payments
			 WHERE status = 'completed' AND payment_date >= date_trunc('month', NOW())) AS month_revenue_cents,
			(SELECT COUNT(*) FROM support_tickets WHERE status IN ('open', 'in_progress')) AS open_tickets`)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return &stats, nil
}

func (r *repository) TopGyms(ctx context.Context, since time.Time, limit int) ([]TopGym, error) {
	gyms := []TopGym{}
	err := r.db.SelectContext(ctx, &gyms, `
		SELECT g.name, COUNT(c.id) AS checkins
		FROM gyms g
		JOIN checkins c ON c.gym_id = g.id
		WHERE c.checkin_time >= $1
		GROUP BY g.id, g.name
		ORDER BY checkins DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top gyms: %w", err)
	}
	return gyms, nil
}

func (r *repository) RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	activity := []ActivityEntry{}
	err := r.db.SelectContext(ctx, &activity, `
		SELECT u.name AS user_name, g.name AS gym_name, c.checkin_time
		FROM checkins c
		JOIN users u ON u.id = c.user_id
		JOIN gyms g ON g.id = c.gym_id
		ORDER BY c.checkin_time DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}
	for i := range activity {
		activity[i].Type = "checkin"
	}
	return activity, nil
}

func (r *repository) ListUsers(ctx context.Context, page, limit int, search string) ([]UserRow, int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = `WHERE u.name ILIKE $1 OR u.email ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users u `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.email, u.phone, u.is_active, u.created_at,
		       s.plan_name, s.sub_status, s.sub_end_date,
		       (SELECT COUNT(*) FROM checkins c WHERE c.user_id = u.id) AS total_checkins
		FROM users u
		LEFT JOIN LATERAL (
			SELECT p.name AS plan_name, s.status AS sub_status, s.end_date AS sub_end_date
			FROM subscriptions s
			JOIN plans p ON p.id = s.plan_id
			WHERE s.user_id = u.id AND s.status = 'active'
			ORDER BY s.end_date DESC
			LIMIT 1
		) s ON true
		%s
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	users := []UserRow{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (r *repository) ListGyms(ctx context.Context, page, limit int, search string) ([]GymRow, int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = `WHERE g.name ILIKE $1 OR g.address ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM gyms g `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count gyms: %w", err)
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT g.id, g.name, g.address, g.phone, g.current_occupancy, g.max_capacity,
		       g.rating, g.total_reviews, g.is_active, g.created_at,
		       (SELECT COUNT(*) FROM checkins c WHERE c.gym_id = g.id) AS total_checkins,
		       (SELECT COUNT(*) FROM checkins c
		        WHERE c.gym_id = g.id AND c.checkin_time >= date_trunc('month', NOW())) AS month_checkins
		FROM gyms g
		%s
		ORDER BY g.name ASC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	gyms := []GymRow{}
	if err := r.db.SelectContext(ctx, &gyms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list gyms: %w", err)
	}
	return gyms, total, nil
}

func (r *repository) ToggleUserStatus(ctx context.Context, userID int) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active,
		`UPDATE users SET is_active = NOT is_active, updated_at = NOW()
		 WHERE id = $1
		 RETURNING is_active`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle user status: %w", err)
	}
	return active, nil
}

func (r *repository) ToggleGymStatus(ctx context.Context, gymID int) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active,
		`UPDATE gyms SET is_active = NOT is_active, updated_at = NOW()
		 WHERE id = $1
		 RETURNING is_active`, gymID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrGymNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle gym status: %w", err)
	}
	return active, nil
}

func (r *repository) DailyCheckins(ctx context.Context, since time.Time) ([]DatedCount, error) {
	counts := []DatedCount{}
	err := r.db.SelectContext(ctx, &counts, `
		SELECT to_char(checkin_time::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM checkins
		WHERE checkin_time >= $1
		GROUP BY checkin_time::date
		ORDER BY checkin_time::date`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily checkins: %w", err)
	}
	return counts, nil
}

func (r *repository) DailySignups(ctx context.Context, since time.Time) ([]DatedCount, error) {
	counts := []DatedCount{}
	err := r.db.SelectContext(ctx, &counts, `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM users
		WHERE created_at >= $1
		GROUP BY created_at::date
		ORDER BY created_at::date`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily signups: %w", err)
	}
	return counts, nil
}

func (r *repository) DailyRevenue(ctx context.Context, since time.Time) ([]DatedRevenue, error) {
	revenue := []DatedRevenue{}
	err := r.db.SelectContext(ctx, &revenue, `
		SELECT to_char(payment_date::date, 'YYYY-MM-DD') AS date, SUM(amount_cents) AS revenue_cents
		FROM payments
		WHERE status = 'completed' AND payment_date >= $1
		GROUP BY payment_date::date
		ORDER BY payment_date::date`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily revenue: %w", err)
	}
	return revenue, nil
}

func (r *repository) GymStats(ctx context.Context, gymID int) (*GymStats, error) {
	var stats GymStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) FILTER (WHERE is_active) AS active_checkins,
			COUNT(*) FILTER (WHERE checkin_time::date = CURRENT_DATE) AS today_checkins,
			COUNT(*) FILTER (WHERE checkin_time >= NOW() - INTERVAL '7 days') AS week_checkins,
			COUNT(*) FILTER (WHERE checkin_time >= date_trunc('month', NOW())) AS month_checkins
		FROM checkins
		WHERE gym_id = $1`, gymID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gym stats: %w", err)
	}
	return &stats, nil
}

func (r *repository) HourlyDistribution(ctx context.Context, gymID int, since time.Time) ([]HourCount, error) {
	hours := []HourCount{}
	err := r.db.SelectContext(ctx, &hours, `
		SELECT EXTRACT(HOUR FROM checkin_time)::int AS hour, COUNT(*) AS count
		FROM checkins
		WHERE gym_id = $1 AND checkin_time >= $2
		GROUP BY hour
		ORDER BY hour`, gymID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load hourly distribution: %w", err)
	}
	return hours, nil
}

// DailyTrend returns one row per day over the last N days, zero-filled
// for days without visits.
func (r *repository) DailyTrend(ctx context.Context, gymID int, days int) ([]DatedCount, error) {
	trend := []DatedCount{}
	err := r.db.SelectContext(ctx, &trend, `
		SELECT to_char(d.day, 'YYYY-MM-DD') AS date, COUNT(c.id) AS count
		FROM generate_series(CURRENT_DATE - ($2 - 1) * INTERVAL '1 day', CURRENT_DATE, INTERVAL '1 day') AS d(day)
		LEFT JOIN checkins c ON c.gym_id = $1 AND c.checkin_time::date = d.day::date
		GROUP BY d.day
		ORDER BY d.day DESC`, gymID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily trend: %w", err)
	}
	return trend, nil
}

func (r *repository) CheckinsReport(ctx context.Context, gymID int, start, end time.Time) ([]ReportRow, error) {
	rows := []ReportRow{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT c.id AS checkin_id, u.name AS user_name, u.email AS user_email,
		       c.checkin_time, c.checkout_time,
		       CASE WHEN c.checkout_time IS NOT NULL
		            THEN (EXTRACT(EPOCH FROM (c.checkout_time - c.checkin_time)) / 60)::int
		       END AS duration_minutes,
		       c.is_active
		FROM checkins c
		JOIN users u ON u.id = c.user_id
		WHERE c.gym_id = $1 AND c.checkin_time >= $2 AND c.checkin_time <= $3
		ORDER BY c.checkin_time ASC`, gymID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkins report: %w", err)
	}
	return rows, nil
}

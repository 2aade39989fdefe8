package admin

import "time"

type DashboardStats struct {
	TotalUsers          int   `db:"total_users" json:"total_users"`
	TotalGyms           int   `db:"total_gyms" json:"total_gyms"`
	ActiveSubscriptions int   `db:"active_subscriptions" json:"active_subscriptions"`
	TodayCheckins       int   `db:"today_checkins" json:"today_checkins"`
	NewUsersWeek        int   `db:"new_users_week" json:"new_users_week"`
	MonthRevenueCents   int64 `db:"month_revenue_cents" json:"month_revenue_cents"`
	OpenTickets         int   `db:"open_tickets" json:"open_tickets"`
}

type TopGym struct {
	Name     string `db:"name" json:"name"`
	Checkins int    `db:"checkins" json:"checkins"`
}

type ActivityEntry struct {
	Type      string    `db:"-" json:"type"`
	UserName  string    `db:"user_name" json:"user_name"`
	GymName   string    `db:"gym_name" json:"gym_name"`
	Timestamp time.Time `db:"checkin_time" json:"timestamp"`
}

type Dashboard struct {
	Stats          DashboardStats  `json:"stats"`
	TopGyms        []TopGym        `json:"top_gyms"`
	RecentActivity []ActivityEntry `json:"recent_activity"`
}

// UserRow is the admin user listing projection: profile plus the active
// subscription and lifetime check-in count.
type UserRow struct {
	ID            int        `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	Phone         string     `db:"phone" json:"phone"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	PlanName      *string    `db:"plan_name" json:"plan_name,omitempty"`
	SubStatus     *string    `db:"sub_status" json:"subscription_status,omitempty"`
	SubEndDate    *time.Time `db:"sub_end_date" json:"subscription_end_date,omitempty"`
	TotalCheckins int        `db:"total_checkins" json:"total_checkins"`
}

type GymRow struct {
	ID               int       `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Address          string    `db:"address" json:"address"`
	Phone            string    `db:"phone" json:"phone"`
	CurrentOccupancy int       `db:"current_occupancy" json:"current_occupancy"`
	MaxCapacity      int       `db:"max_capacity" json:"max_capacity"`
	Rating           float64   `db:"rating" json:"rating"`
	TotalReviews     int       `db:"total_reviews" json:"total_reviews"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	TotalCheckins    int       `db:"total_checkins" json:"total_checkins"`
	MonthCheckins    int       `db:"month_checkins" json:"month_checkins"`
}

type DatedCount struct {
	Date  string `db:"date" json:"date"`
	Count int    `db:"count" json:"count"`
}

type DatedRevenue struct {
	Date         string `db:"date" json:"date"`
	RevenueCents int64  `db:"revenue_cents" json:"revenue_cents"`
}

type Analytics struct {
	PeriodDays    int            `json:"period_days"`
	DailyCheckins []DatedCount   `json:"daily_checkins"`
	DailySignups  []DatedCount   `json:"daily_signups"`
	DailyRevenue  []DatedRevenue `json:"daily_revenue"`
}

type GymSummary struct {
	ID                  int     `json:"id"`
	Name                string  `json:"name"`
	Address             string  `json:"address"`
	CurrentOccupancy    int     `json:"current_occupancy"`
	MaxCapacity         int     `json:"max_capacity"`
	OccupancyPercentage float64 `json:"occupancy_percentage"`
}

type GymStats struct {
	ActiveCheckins int `db:"active_checkins" json:"active_checkins"`
	TodayCheckins  int `db:"today_checkins" json:"today_checkins"`
	WeekCheckins   int `db:"week_checkins" json:"week_checkins"`
	MonthCheckins  int `db:"month_checkins" json:"month_checkins"`
}

type HourCount struct {
	Hour  int `db:"hour" json:"hour"`
	Count int `db:"count" json:"count"`
}

type GymDashboard struct {
	Gym                GymSummary   `json:"gym"`
	Stats              GymStats     `json:"stats"`
	HourlyDistribution []HourCount  `json:"hourly_distribution"`
	DailyTrend         []DatedCount `json:"daily_trend"`
}

type ReportRow struct {
	CheckinID       int        `db:"checkin_id" json:"checkin_id"`
	UserName        string     `db:"user_name" json:"user_name"`
	UserEmail       string     `db:"user_email" json:"user_email"`
	CheckinTime     time.Time  `db:"checkin_time" json:"checkin_time"`
	CheckoutTime    *time.Time `db:"checkout_time" json:"checkout_time,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	IsActive        bool       `db:"is_active" json:"is_active"`
}

type ReportSummary struct {
	TotalCheckins          int     `json:"total_checkins"`
	TotalDurationMinutes   int     `json:"total_duration_minutes"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
}

type ReportPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Report struct {
	Period   ReportPeriod  `json:"period"`
	Summary  ReportSummary `json:"summary"`
	Checkins []ReportRow   `json:"checkins"`
}

type UpdateCapacityRequest struct {
	NewCapacity int  `json:"new_capacity" binding:"required,min=1"`
	GymID       *int `json:"gym_id"`
}

type ForceCheckoutRequest struct {
	Reason string `json:"reason"`
}

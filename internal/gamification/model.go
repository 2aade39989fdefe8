package gamification

import "time"

// Points awarded per check-in, before any streak bonus.
const (
	BaseCheckinPoints = 10
	MaxStreakBonus    = 20
	PointsPerLevel    = 100
)

// Point history reasons.
const (
	ReasonCheckin     = "CHECKIN"
	ReasonAchievement = "ACHIEVEMENT"
)

// Achievement condition types.
const (
	ConditionCheckinCount = "CHECKIN_COUNT"
	ConditionStreakDays   = "STREAK_DAYS"
	ConditionUniqueGyms   = "UNIQUE_GYMS"
)

// Leaderboard periods.
const (
	PeriodAllTime = "all_time"
	PeriodMonthly = "monthly"
	PeriodWeekly  = "weekly"
)

type UserPoints struct {
	ID              int        `db:"id" json:"id"`
	UserID          int        `db:"user_id" json:"user_id"`
	TotalPoints     int        `db:"total_points" json:"total_points"`
	CurrentStreak   int        `db:"current_streak" json:"current_streak"`
	LongestStreak   int        `db:"longest_streak" json:"longest_streak"`
	LastCheckinDate *time.Time `db:"last_checkin_date" json:"last_checkin_date"`
	Level           int        `db:"level" json:"level"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// PointsToNextLevel returns how many points are still missing for the
// next level, floored at 0.
func (p *UserPoints) PointsToNextLevel() int {
	needed := p.Level*PointsPerLevel - p.TotalPoints
	if needed < 0 {
		return 0
	}
	return needed
}

// AddPoints credits points and recomputes the level. It reports whether
// the user leveled up.
func (p *UserPoints) AddPoints(points int) bool {
	p.TotalPoints += points

	newLevel := p.TotalPoints/PointsPerLevel + 1
	if newLevel > p.Level {
		p.Level = newLevel
		return true
	}
	return false
}

type PointHistory struct {
	ID                int       `db:"id" json:"id"`
	UserPointsID      int       `db:"user_points_id" json:"-"`
	PointsChange      int       `db:"points_change" json:"points_change"`
	Reason            string    `db:"reason" json:"reason"`
	Description       string    `db:"description" json:"description"`
	RelatedEntityType *string   `db:"related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   *int      `db:"related_entity_id" json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type Achievement struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	Icon           string    `db:"icon" json:"icon"`
	PointsReward   int       `db:"points_reward" json:"points_reward"`
	ConditionType  string    `db:"condition_type" json:"condition_type"`
	ConditionValue int       `db:"condition_value" json:"condition_value"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type UserAchievement struct {
	ID            int       `db:"id" json:"id"`
	UserID        int       `db:"user_id" json:"user_id"`
	AchievementID int       `db:"achievement_id" json:"achievement_id"`
	EarnedAt      time.Time `db:"earned_at" json:"earned_at"`
	Notified      bool      `db:"notified" json:"notified"`
}

// AchievementStatus is an achievement annotated with the viewing user's
// earned state and progress towards the condition.
type AchievementStatus struct {
	Achievement
	IsEarned           bool       `json:"is_earned"`
	EarnedAt           *time.Time `json:"earned_at,omitempty"`
	Progress           int        `json:"progress"`
	ProgressPercentage float64    `json:"progress_percentage"`
}

type LeaderboardEntry struct {
	Position      int    `db:"-" json:"position"`
	UserID        int    `db:"user_id" json:"user_id"`
	Name          string `db:"name" json:"name"`
	Points        int    `db:"points" json:"points"`
	Level         *int   `db:"level" json:"level,omitempty"`
	IsCurrentUser bool   `db:"-" json:"is_current_user"`
}

type Leaderboard struct {
	Entries             []LeaderboardEntry `json:"leaderboard"`
	CurrentUserPosition *int               `json:"current_user_position"`
	Period              string             `json:"period"`
}

// CheckinRef is the slice of a check-in row the award path cares about.
type CheckinRef struct {
	ID          int       `db:"id"`
	GymID       int       `db:"gym_id"`
	CheckinTime time.Time `db:"checkin_time"`
}

// AwardResult summarizes everything a single check-in earned.
type AwardResult struct {
	PointsAwarded   int           `json:"points_awarded"`
	TotalPoints     int           `json:"total_points"`
	Level           int           `json:"level"`
	LevelUp         bool          `json:"level_up"`
	CurrentStreak   int           `json:"current_streak"`
	NewAchievements []Achievement `json:"new_achievements"`
}

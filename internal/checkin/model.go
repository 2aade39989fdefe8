package checkin

import "time"

type CheckIn struct {
	ID           int        `db:"id" json:"id"`
	UserID       int        `db:"user_id" json:"user_id"`
	GymID        int        `db:"gym_id" json:"gym_id"`
	CheckinTime  time.Time  `db:"checkin_time" json:"checkin_time"`
	CheckoutTime *time.Time `db:"checkout_time" json:"checkout_time,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// DurationMinutes is nil while the visit is still open.
func (c *CheckIn) DurationMinutes() *int {
	if c.CheckoutTime == nil {
		return nil
	}
	minutes := int(c.CheckoutTime.Sub(c.CheckinTime).Minutes())
	return &minutes
}

// CheckInWithGym is a history row joined with gym details.
type CheckInWithGym struct {
	CheckIn
	GymName    string `db:"gym_name" json:"gym_name"`
	GymAddress string `db:"gym_address" json:"gym_address"`
}

// ActiveEntry is the gym-admin view of one open visit.
type ActiveEntry struct {
	ID          int       `db:"id" json:"id"`
	GymID       int       `db:"gym_id" json:"gym_id"`
	UserName    string    `db:"user_name" json:"user_name"`
	UserEmail   string    `db:"user_email" json:"user_email"`
	CheckinTime time.Time `db:"checkin_time" json:"checkin_time"`
}

type CheckInRequest struct {
	GymID int `json:"gym_id" binding:"required"`
}

type CheckOutRequest struct {
	CheckinID int `json:"checkin_id" binding:"required"`
}

// SweepResult summarizes one stale-visit sweep run.
type SweepResult struct {
	Closed  int `json:"closed"`
	Skipped int `json:"skipped"`
}

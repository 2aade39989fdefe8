package support

import "time"

// Ticket statuses.
const (
	StatusOpen        = "open"
	StatusInProgress  = "in_progress"
	StatusWaitingUser = "waiting_user"
	StatusClosed      = "closed"
)

// Ticket priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Ticket categories.
const (
	CategoryTechnical      = "technical"
	CategoryBilling        = "billing"
	CategoryGymIssue       = "gym_issue"
	CategoryFeatureRequest = "feature_request"
	CategoryOther          = "other"
)

type Ticket struct {
	ID               int        `db:"id" json:"id"`
	UserID           int        `db:"user_id" json:"user_id"`
	AssignedTo       *int       `db:"assigned_to" json:"assigned_to,omitempty"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Category         string     `db:"category" json:"category"`
	Priority         string     `db:"priority" json:"priority"`
	Status           string     `db:"status" json:"status"`
	RelatedGymID     *int       `db:"related_gym_id" json:"related_gym_id,omitempty"`
	RelatedCheckinID *int       `db:"related_checkin_id" json:"related_checkin_id,omitempty"`
	Resolution       *string    `db:"resolution" json:"resolution,omitempty"`
	ResolvedAt       *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// TicketWithUser carries the requester's name and email for support staff
// listings.
type TicketWithUser struct {
	Ticket
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

type CreateRequest struct {
	Title            string `json:"title" binding:"required,min=3,max=200"`
	Description      string `json:"description" binding:"required"`
	Category         string `json:"category" binding:"required,oneof=technical billing gym_issue feature_request other"`
	Priority         string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	RelatedGymID     *int   `json:"related_gym_id"`
	RelatedCheckinID *int   `json:"related_checkin_id"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

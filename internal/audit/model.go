package audit

import "time"

// Entry is one append-only audit record. Entries are written for every
// elevated mutation and never updated.
type Entry struct {
	ID          int       `db:"id" json:"id"`
	UserID      *int      `db:"user_id" json:"user_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    *int      `db:"entity_id" json:"entity_id,omitempty"`
	Description string    `db:"description" json:"description"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

// Actions recorded across the platform.
const (
	ActionForceCheckout    = "FORCE_CHECKOUT"
	ActionUpdateCapacity   = "UPDATE_CAPACITY"
	ActionToggleUserStatus = "TOGGLE_USER_STATUS"
	ActionToggleGymStatus  = "TOGGLE_GYM_STATUS"
	ActionCreateGym        = "CREATE_GYM"
	ActionUpdateGym        = "UPDATE_GYM"
	ActionSubscribe        = "SUBSCRIBE"
	ActionCancelSub        = "CANCEL_SUBSCRIPTION"
	ActionRenewSub         = "RENEW_SUBSCRIPTION"
	ActionResolveTicket    = "RESOLVE_TICKET"
)

// ListParams filters an audit log query.
type ListParams struct {
	UserID     *int
	Action     string
	EntityType string
	Page       int
	Limit      int
}

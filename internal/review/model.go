package review

import "time"

// Points credited for posting a review.
const ReviewPoints = 5

const PointsReason = "REVIEW"

type Review struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"user_id"`
	GymID         int        `db:"gym_id" json:"gym_id"`
	Rating        int        `db:"rating" json:"rating"`
	Title         *string    `db:"title" json:"title,omitempty"`
	Comment       *string    `db:"comment" json:"comment,omitempty"`
	IsAnonymous   bool       `db:"is_anonymous" json:"is_anonymous"`
	IsApproved    bool       `db:"is_approved" json:"is_approved"`
	HelpfulVotes  int        `db:"helpful_votes" json:"helpful_votes"`
	ReportedCount int        `db:"reported_count" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ReviewWithAuthor carries the author's display name for listings.
// Anonymous reviews keep the name blank.
type ReviewWithAuthor struct {
	Review
	AuthorName string `db:"author_name" json:"author_name"`
}

type CreateRequest struct {
	Rating      int     `json:"rating" binding:"required,min=1,max=5"`
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Comment     *string `json:"comment"`
	IsAnonymous bool    `json:"is_anonymous"`
}

package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrGymNotFound  = errors.New("gym not found")
	ErrReviewExists = errors.New("review already exists for this gym")
)

const reviewColumns = `id, user_id, gym_id, rating, title, comment, is_anonymous,
		is_approved, helpful_votes, reported_count, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, userID, gymID int, req CreateRequest) (*Review, error)
	ExistsByUserAndGym(ctx context.Context, userID, gymID int) (bool, error)
	ListByGym(ctx context.Context, gymID, limit int) ([]ReviewWithAuthor, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts the review and folds its rating into the gym's aggregate
// in the same transaction, so the average and the review count never
// drift apart.
func (r *repository) Create(ctx context.Context, userID, gymID int, req CreateRequest) (*Review, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var review Review
	err = tx.GetContext(ctx, &review,
		`INSERT INTO gym_reviews (user_id, gym_id, rating, title, comment, is_anonymous)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+reviewColumns,
		userID, gymID, req.Rating, req.Title, req.Comment, req.IsAnonymous)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE gyms
		 SET rating = ROUND(((rating * total_reviews) + $1)::numeric / (total_reviews + 1), 2),
		     total_reviews = total_reviews + 1,
		     updated_at = NOW()
		 WHERE id = $2`,
		req.Rating, gymID)
	if err != nil {
		return nil, fmt.Errorf("failed to update gym rating: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check gym update: %w", err)
	}
	if affected == 0 {
		return nil, ErrGymNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}
	return &review, nil
}

func (r *repository) ExistsByUserAndGym(ctx context.Context, userID, gymID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM gym_reviews WHERE user_id = $1 AND gym_id = $2)`,
		userID, gymID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return exists, nil
}

func (r *repository) ListByGym(ctx context.Context, gymID, limit int) ([]ReviewWithAuthor, error) {
	if limit <= 0 {
		limit = 50
	}
	reviews := []ReviewWithAuthor{}
	err := r.db.SelectContext(ctx, &reviews,
		`SELECT r.id, r.user_id, r.gym_id, r.rating, r.title, r.comment, r.is_anonymous,
		        r.is_approved, r.helpful_votes, r.reported_count, r.created_at, r.updated_at,
		        CASE WHEN r.is_anonymous THEN '' ELSE u.name END AS author_name
		 FROM gym_reviews r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.gym_id = $1 AND r.is_approved = true
		 ORDER BY r.created_at DESC
		 LIMIT $2`, gymID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

package review

import (
	"context"

	"github.com/mechamederoot1/projeto-unipass/internal/logger"
)

// PointsCrediter rewards platform activity with gamification points.
type PointsCrediter interface {
	CreditPoints(ctx context.Context, userID, points int, reason, description string) error
}

type Service interface {
	Create(ctx context.Context, userID, gymID int, req CreateRequest) (*Review, error)
	ListByGym(ctx context.Context, gymID, limit int) ([]ReviewWithAuthor, error)
}

type service struct {
	repo   Repository
	points PointsCrediter
}

func NewService(repo Repository, points PointsCrediter) Service {
	return &service{repo: repo, points: points}
}

// Create posts a review, one per user per gym. The points reward is a
// soft follow-up and never fails the review itself.
func (s *service) Create(ctx context.Context, userID, gymID int, req CreateRequest) (*Review, error) {
	exists, err := s.repo.ExistsByUserAndGym(ctx, userID, gymID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	review, err := s.repo.Create(ctx, userID, gymID, req)
	if err != nil {
		return nil, err
	}

	if err := s.points.CreditPoints(ctx, userID, ReviewPoints, PointsReason, "Review posted"); err != nil {
		logger.Errorf("failed to credit review points for user %d: %v", userID, err)
	}

	return review, nil
}

func (s *service) ListByGym(ctx context.Context, gymID, limit int) ([]ReviewWithAuthor, error) {
	return s.repo.ListByGym(ctx, gymID, limit)
}

package checkin

import (
	"context"
	"time"
)

type Repository interface {
	// VerifyGym reports ErrGymNotFound when the gym is missing or inactive.
	VerifyGym(ctx context.Context, gymID int) error

	// CreateWithOccupancy opens a visit and increments the gym's occupancy in
	// one transaction. Returns the new row and the gym's occupancy after the
	// increment.
	CreateWithOccupancy(ctx context.Context, userID, gymID int) (*CheckIn, int, error)

	// CloseWithOccupancy closes an active visit and decrements occupancy in
	// one transaction. When userID is non-nil the visit must belong to that
	// user. Returns the closed row and the occupancy after the decrement.
	CloseWithOccupancy(ctx context.Context, checkinID int, userID *int, checkoutTime time.Time) (*CheckIn, int, error)

	GetActiveByUser(ctx context.Context, userID int) (*CheckIn, error)
	GetActiveByID(ctx context.Context, checkinID int) (*CheckIn, error)
	ListByUser(ctx context.Context, userID, limit int) ([]CheckInWithGym, error)
	ListActiveByGym(ctx context.Context, gymID int) ([]ActiveEntry, error)
	ListStaleActive(ctx context.Context, cutoff time.Time) ([]CheckIn, error)
}

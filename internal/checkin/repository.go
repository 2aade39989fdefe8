package checkin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrGymNotFound         = errors.New("gym not found or inactive")
	ErrGymAtCapacity       = errors.New("gym is at full capacity")
	ErrActiveCheckinExists = errors.New("user already has an active check-in")
	ErrCheckinNotFound     = errors.New("active check-in not found")
)

const checkinColumns = `id, user_id, gym_id, checkin_time, checkout_time, is_active, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// VerifyGym confirms the gym exists and is active. CreateWithOccupancy
// re-checks under a row lock; this pre-check keeps the not-found answer
// independent of the caller's subscription state.
func (r *repository) VerifyGym(ctx context.Context, gymID int) error {
	var active bool
	err := r.db.GetContext(ctx, &active, `SELECT is_active FROM gyms WHERE id = $1`, gymID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGymNotFound
		}
		return err
	}
	if !active {
		return ErrGymNotFound
	}
	return nil
}

// CreateWithOccupancy locks the gym row for the duration of the transaction
// so the capacity check and the occupancy increment cannot interleave with a
// concurrent check-in.
func (r *repository) CreateWithOccupancy(ctx context.Context, userID, gymID int) (*CheckIn, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var gymState struct {
		MaxCapacity      int  `db:"max_capacity"`
		CurrentOccupancy int  `db:"current_occupancy"`
		IsActive         bool `db:"is_active"`
	}
	err = tx.GetContext(ctx, &gymState,
		`SELECT max_capacity, current_occupancy, is_active FROM gyms WHERE id = $1 FOR UPDATE`, gymID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrGymNotFound
		}
		return nil, 0, err
	}
	if !gymState.IsActive {
		return nil, 0, ErrGymNotFound
	}

	var hasActive bool
	err = tx.GetContext(ctx, &hasActive,
		`SELECT EXISTS(SELECT 1 FROM checkins WHERE user_id = $1 AND is_active = true)`, userID)
	if err != nil {
		return nil, 0, err
	}
	if hasActive {
		return nil, 0, ErrActiveCheckinExists
	}

	if gymState.CurrentOccupancy >= gymState.MaxCapacity {
		return nil, 0, ErrGymAtCapacity
	}

	var checkin CheckIn
	err = tx.GetContext(ctx, &checkin, `
		INSERT INTO checkins (user_id, gym_id)
		VALUES ($1, $2)
		RETURNING `+checkinColumns, userID, gymID)
	if err != nil {
		return nil, 0, err
	}

	newOccupancy := gymState.CurrentOccupancy + 1
	_, err = tx.ExecContext(ctx,
		`UPDATE gyms SET current_occupancy = $1, updated_at = NOW() WHERE id = $2`, newOccupancy, gymID)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	return &checkin, newOccupancy, nil
}

func (r *repository) CloseWithOccupancy(ctx context.Context, checkinID int, userID *int, checkoutTime time.Time) (*CheckIn, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var checkin CheckIn
	if userID != nil {
		err = tx.GetContext(ctx, &checkin,
			`SELECT `+checkinColumns+` FROM checkins WHERE id = $1 AND user_id = $2 AND is_active = true FOR UPDATE`,
			checkinID, *userID)
	} else {
		err = tx.GetContext(ctx, &checkin,
			`SELECT `+checkinColumns+` FROM checkins WHERE id = $1 AND is_active = true FOR UPDATE`,
			checkinID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrCheckinNotFound
		}
		return nil, 0, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE checkins SET checkout_time = $1, is_active = false WHERE id = $2`, checkoutTime, checkinID)
	if err != nil {
		return nil, 0, err
	}

	var occupancy int
	err = tx.GetContext(ctx, &occupancy,
		`SELECT current_occupancy FROM gyms WHERE id = $1 FOR UPDATE`, checkin.GymID)
	if err != nil {
		return nil, 0, err
	}

	// occupancy never goes below zero
	newOccupancy := occupancy - 1
	if newOccupancy < 0 {
		newOccupancy = 0
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE gyms SET current_occupancy = $1, updated_at = NOW() WHERE id = $2`, newOccupancy, checkin.GymID)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	checkin.CheckoutTime = &checkoutTime
	checkin.IsActive = false
	return &checkin, newOccupancy, nil
}

func (r *repository) GetActiveByUser(ctx context.Context, userID int) (*CheckIn, error) {
	var checkin CheckIn
	err := r.db.GetContext(ctx, &checkin,
		`SELECT `+checkinColumns+` FROM checkins WHERE user_id = $1 AND is_active = true`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckinNotFound
		}
		return nil, err
	}
	return &checkin, nil
}

func (r *repository) GetActiveByID(ctx context.Context, checkinID int) (*CheckIn, error) {
	var checkin CheckIn
	err := r.db.GetContext(ctx, &checkin,
		`SELECT `+checkinColumns+` FROM checkins WHERE id = $1 AND is_active = true`, checkinID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckinNotFound
		}
		return nil, err
	}
	return &checkin, nil
}

func (r *repository) ListByUser(ctx context.Context, userID, limit int) ([]CheckInWithGym, error) {
	query := `
		SELECT c.id, c.user_id, c.gym_id, c.checkin_time, c.checkout_time, c.is_active, c.created_at,
			g.name AS gym_name, g.address AS gym_address
		FROM checkins c
		JOIN gyms g ON g.id = c.gym_id
		WHERE c.user_id = $1
		ORDER BY c.checkin_time DESC
		LIMIT $2
	`

	var checkins []CheckInWithGym
	err := r.db.SelectContext(ctx, &checkins, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return checkins, nil
}

func (r *repository) ListActiveByGym(ctx context.Context, gymID int) ([]ActiveEntry, error) {
	query := `
		SELECT c.id, c.gym_id, u.name AS user_name, u.email AS user_email, c.checkin_time
		FROM checkins c
		JOIN users u ON u.id = c.user_id
		WHERE c.gym_id = $1 AND c.is_active = true
		ORDER BY c.checkin_time ASC
	`

	var entries []ActiveEntry
	err := r.db.SelectContext(ctx, &entries, query, gymID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListStaleActive(ctx context.Context, cutoff time.Time) ([]CheckIn, error) {
	query := `SELECT ` + checkinColumns + ` FROM checkins WHERE is_active = true AND checkin_time < $1`

	var checkins []CheckIn
	err := r.db.SelectContext(ctx, &checkins, query, cutoff)
	if err != nil {
		return nil, err
	}
	return checkins, nil
}

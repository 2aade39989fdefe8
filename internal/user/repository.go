package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, name, email, phone, password_hash, role, gym_id, is_active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, phone, passwordHash, role string) (*User, error) {
	query := `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, name, email, phone, passwordHash, role)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) EmailTakenByOther(ctx context.Context, email string, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id != $2)`, email, userID)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Update applies only the fields set on the request.
func (r *repository) Update(ctx context.Context, id int, req UpdateRequest) (*User, error) {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Email != nil {
		addSet("email", *req.Email)
	}
	if req.Phone != nil {
		addSet("phone", *req.Phone)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), idx, userColumns)
	args = append(args, id)

	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) GetStats(ctx context.Context, userID int) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total_checkins,
			COUNT(DISTINCT gym_id) AS unique_gyms_visited,
			COALESCE(SUM(
				CASE WHEN checkout_time IS NOT NULL
					THEN EXTRACT(EPOCH FROM (checkout_time - checkin_time)) / 60
					ELSE 0
				END
			)::bigint / 60, 0) AS total_hours_trained
		FROM checkins
		WHERE user_id = $1
	`

	var stats Stats
	err := r.db.GetContext(ctx, &stats, query, userID)
	if err != nil {
		return nil, err
	}

	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.MemberSince = user.CreatedAt

	return &stats, nil
}

package gym

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var ErrGymNotFound = errors.New("gym not found")

const gymColumns = `id, name, address, phone, latitude, longitude, open_hours_weekdays, open_hours_weekends,
		amenities, description, max_capacity, current_occupancy, rating, total_reviews, is_active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateGymRequest) (*Gym, error) {
	query := `
		INSERT INTO gyms (name, address, phone, latitude, longitude, open_hours_weekdays, open_hours_weekends,
			amenities, description, max_capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + gymColumns

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query,
		req.Name, req.Address, req.Phone, req.Latitude, req.Longitude,
		req.OpenHoursWeekdays, req.OpenHoursWeekends, req.Amenities, req.Description, req.MaxCapacity)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE id = $1`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, id)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) GetActiveByID(ctx context.Context, id int) (*Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE id = $1 AND is_active = true`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, id)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) ListActive(ctx context.Context, limit int) ([]Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE is_active = true ORDER BY name ASC LIMIT $1`

	var gyms []Gym
	err := r.db.SelectContext(ctx, &gyms, query, limit)
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

func (r *repository) SearchActive(ctx context.Context, q string, limit int) ([]Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE is_active = true AND (name ILIKE $1 OR address ILIKE $1)
		ORDER BY name ASC
		LIMIT $2
	`

	var gyms []Gym
	err := r.db.SelectContext(ctx, &gyms, query, "%"+q+"%", limit)
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

// Update applies only the fields set on the request, one explicit conditional
// per field.
func (r *repository) Update(ctx context.Context, id int, req UpdateGymRequest) (*Gym, error) {
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
	if req.Address != nil {
		addSet("address", *req.Address)
	}
	if req.Phone != nil {
		addSet("phone", *req.Phone)
	}
	if req.Latitude != nil {
		addSet("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		addSet("longitude", *req.Longitude)
	}
	if req.OpenHoursWeekdays != nil {
		addSet("open_hours_weekdays", *req.OpenHoursWeekdays)
	}
	if req.OpenHoursWeekends != nil {
		addSet("open_hours_weekends", *req.OpenHoursWeekends)
	}
	if req.Amenities != nil {
		addSet("amenities", *req.Amenities)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.MaxCapacity != nil {
		addSet("max_capacity", *req.MaxCapacity)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE gyms SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), idx, gymColumns)
	args = append(args, id)

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, args...)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) UpdateCapacity(ctx context.Context, id, newCapacity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gyms
		SET max_capacity = $1, updated_at = NOW()
		WHERE id = $2
	`, newCapacity, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrGymNotFound
	}

	return nil
}

func (r *repository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gyms
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrGymNotFound
	}

	return nil
}

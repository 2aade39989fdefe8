package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Recorder is the write side, depended on by every package that logs
// elevated mutations.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type Repository interface {
	Recorder
	List(ctx context.Context, params ListParams) ([]Entry, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Record(ctx context.Context, entry Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, description, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.Description, entry.IPAddress)
	return err
}

// List returns a filtered page of entries plus the total count for the same
// filter.
func (r *repository) List(ctx context.Context, params ListParams) ([]Entry, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	addFilter := func(clause string, value interface{}) {
		where = append(where, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}

	if params.UserID != nil {
		addFilter("user_id = $%d", *params.UserID)
	}
	if params.Action != "" {
		addFilter("action = $%d", params.Action)
	}
	if params.EntityType != "" {
		addFilter("entity_type = $%d", params.EntityType)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM audit_logs"+whereClause, args...)
	if err != nil {
		return nil, 0, err
	}

	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	offset := (params.Page - 1) * params.Limit

	query := fmt.Sprintf(`
		SELECT id, user_id, action, entity_type, entity_id, description, ip_address, timestamp
		FROM audit_logs%s
		ORDER BY timestamp DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, idx, idx+1)
	args = append(args, params.Limit, offset)

	var entries []Entry
	err = r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

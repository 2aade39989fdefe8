package support

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketClosed   = errors.New("ticket already closed")
)

const ticketColumns = `id, user_id, assigned_to, title, description, category, priority,
		status, related_gym_id, related_checkin_id, resolution, resolved_at, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, userID int, req CreateRequest) (*Ticket, error)
	GetByID(ctx context.Context, ticketID int) (*Ticket, error)
	ListByUser(ctx context.Context, userID int) ([]Ticket, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]TicketWithUser, error)
	Resolve(ctx context.Context, ticketID, resolverID int, resolution string, resolvedAt time.Time) (*Ticket, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID int, req CreateRequest) (*Ticket, error) {
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	var ticket Ticket
	err := r.db.GetContext(ctx, &ticket,
		`INSERT INTO support_tickets (user_id, title, description, category, priority, status, related_gym_id, related_checkin_id)
		 VALUES ($1, $2, $3, $4, $5, 'open', $6, $7)
		 RETURNING `+ticketColumns,
		userID, req.Title, req.Description, req.Category, priority, req.RelatedGymID, req.RelatedCheckinID)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return &ticket, nil
}

func (r *repository) GetByID(ctx context.Context, ticketID int) (*Ticket, error) {
	var ticket Ticket
	err := r.db.GetContext(ctx, &ticket,
		`SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Ticket, error) {
	tickets := []Ticket{}
	err := r.db.SelectContext(ctx, &tickets,
		`SELECT `+ticketColumns+` FROM support_tickets
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (r *repository) ListByStatus(ctx context.Context, status string, limit int) ([]TicketWithUser, error) {
	if limit <= 0 {
		limit = 50
	}
	tickets := []TicketWithUser{}
	err := r.db.SelectContext(ctx, &tickets,
		`SELECT t.id, t.user_id, t.assigned_to, t.title, t.description, t.category, t.priority,
		        t.status, t.related_gym_id, t.related_checkin_id, t.resolution, t.resolved_at,
		        t.created_at, t.updated_at, u.name AS user_name, u.email AS user_email
		 FROM support_tickets t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.status = $1
		 ORDER BY
		     CASE t.priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
		     t.created_at ASC
		 LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets by status: %w", err)
	}
	return tickets, nil
}

func (r *repository) Resolve(ctx context.Context, ticketID, resolverID int, resolution string, resolvedAt time.Time) (*Ticket, error) {
	var ticket Ticket
	err := r.db.GetContext(ctx, &ticket,
		`UPDATE support_tickets
		 SET status = 'closed', resolution = $1, resolved_at = $2, assigned_to = $3, updated_at = NOW()
		 WHERE id = $4 AND status != 'closed'
		 RETURNING `+ticketColumns,
		resolution, resolvedAt, resolverID, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ticket: %w", err)
	}
	return &ticket, nil
}

package support

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mechamederoot1/projeto-unipass/internal/audit"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
	"github.com/mechamederoot1/projeto-unipass/internal/logger"
)

var ErrInvalidStatus = errors.New("invalid ticket status")

type Service interface {
	Create(ctx context.Context, userID int, req CreateRequest) (*Ticket, error)
	MyTickets(ctx context.Context, userID int) ([]Ticket, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]TicketWithUser, error)
	Resolve(ctx context.Context, actor auth.Actor, ticketID int, resolution, ip string) (*Ticket, error)
}

type service struct {
	repo    Repository
	auditor audit.Recorder
}

func NewService(repo Repository, auditor audit.Recorder) Service {
	return &service{repo: repo, auditor: auditor}
}

func (s *service) Create(ctx context.Context, userID int, req CreateRequest) (*Ticket, error) {
	return s.repo.Create(ctx, userID, req)
}

func (s *service) MyTickets(ctx context.Context, userID int) ([]Ticket, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListByStatus(ctx context.Context, status string, limit int) ([]TicketWithUser, error) {
	switch status {
	case StatusOpen, StatusInProgress, StatusWaitingUser, StatusClosed:
	default:
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status, limit)
}

// Resolve closes a ticket with a resolution note and audit-logs the
// action.
func (s *service) Resolve(ctx context.Context, actor auth.Actor, ticketID int, resolution, ip string) (*Ticket, error) {
	existing, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusClosed {
		return nil, ErrTicketClosed
	}

	ticket, err := s.repo.Resolve(ctx, ticketID, actor.UserID, resolution, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	entityID := ticket.ID
	if err := s.auditor.Record(ctx, audit.Entry{
		UserID:      &actor.UserID,
		Action:      audit.ActionResolveTicket,
		EntityType:  "support_ticket",
		EntityID:    &entityID,
		Description: fmt.Sprintf("Ticket %q resolved", ticket.Title),
		IPAddress:   ip,
	}); err != nil {
		logger.Errorf("failed to audit ticket resolution %d: %v", ticket.ID, err)
	}

	return ticket, nil
}

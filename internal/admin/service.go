package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mechamederoot1/projeto-unipass/internal/api"
	"github.com/mechamederoot1/projeto-unipass/internal/audit"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
	"github.com/mechamederoot1/projeto-unipass/internal/checkin"
	"github.com/mechamederoot1/projeto-unipass/internal/gym"
	"github.com/mechamederoot1/projeto-unipass/internal/logger"
)

var (
	ErrForbidden    = errors.New("not allowed to manage this gym")
	ErrGymRequired  = errors.New("gym_id is required")
	ErrInvalidRange = errors.New("invalid date range")

	ErrCapacityBelowOccupancy = errors.New("capacity cannot be lower than current occupancy")
)

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Users(ctx context.Context, page, limit int, search string) ([]UserRow, api.Pagination, error)
	Gyms(ctx context.Context, page, limit int, search string) ([]GymRow, api.Pagination, error)
	ToggleUser(ctx context.Context, actor auth.Actor, userID int, ip string) (bool, error)
	ToggleGym(ctx context.Context, actor auth.Actor, gymID int, ip string) (bool, error)
	Analytics(ctx context.Context, days int) (*Analytics, error)
	AuditLogs(ctx context.Context, params audit.ListParams) ([]audit.Entry, api.Pagination, error)

	GymDashboard(ctx context.Context, actor auth.Actor, requestedGymID int) (*GymDashboard, error)
	ActiveCheckins(ctx context.Context, actor auth.Actor, requestedGymID int) ([]checkin.ActiveEntry, error)
	ForceCheckout(ctx context.Context, actor auth.Actor, checkinID int, reason, ip string) (*checkin.CheckIn, error)
	UpdateCapacity(ctx context.Context, actor auth.Actor, requestedGymID, newCapacity int, ip string) error
	Report(ctx context.Context, actor auth.Actor, requestedGymID int, start, end time.Time) (*Report, error)
}

type service struct {
	repo     Repository
	gyms     gym.Repository
	checkins checkin.Service
	audits   audit.Repository
}

func NewService(repo Repository, gyms gym.Repository, checkins checkin.Service, audits audit.Repository) Service {
	return &service{repo: repo, gyms: gyms, checkins: checkins, audits: audits}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.repo.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	topGyms, err := s.repo.TopGyms(ctx, time.Now().UTC().AddDate(0, 0, -30), 5)
	if err != nil {
		return nil, err
	}

	activity, err := s.repo.RecentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Stats: *stats, TopGyms: topGyms, RecentActivity: activity}, nil
}

func (s *service) Users(ctx context.Context, page, limit int, search string) ([]UserRow, api.Pagination, error) {
	page, limit = normalizePage(page, limit)
	users, total, err := s.repo.ListUsers(ctx, page, limit, search)
	if err != nil {
		return nil, api.Pagination{}, err
	}
	return users, api.NewPagination(page, limit, total), nil
}

func (s *service) Gyms(ctx context.Context, page, limit int, search string) ([]GymRow, api.Pagination, error) {
	page, limit = normalizePage(page, limit)
	gyms, total, err := s.repo.ListGyms(ctx, page, limit, search)
	if err != nil {
		return nil, api.Pagination{}, err
	}
	return gyms, api.NewPagination(page, limit, total), nil
}

func (s *service) ToggleUser(ctx context.Context, actor auth.Actor, userID int, ip string) (bool, error) {
	active, err := s.repo.ToggleUserStatus(ctx, userID)
	if err != nil {
		return false, err
	}

	s.logAudit(ctx, actor, audit.ActionToggleUserStatus, "user", userID,
		fmt.Sprintf("User status changed to active=%t", active), ip)
	return active, nil
}

func (s *service) ToggleGym(ctx context.Context, actor auth.Actor, gymID int, ip string) (bool, error) {
	active, err := s.repo.ToggleGymStatus(ctx, gymID)
	if err != nil {
		return false, err
	}

	s.logAudit(ctx, actor, audit.ActionToggleGymStatus, "gym", gymID,
		fmt.Sprintf("Gym status changed to active=%t", active), ip)
	return active, nil
}

func (s *service) Analytics(ctx context.Context, days int) (*Analytics, error) {
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	checkins, err := s.repo.DailyCheckins(ctx, since)
	if err != nil {
		return nil, err
	}
	signups, err := s.repo.DailySignups(ctx, since)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.DailyRevenue(ctx, since)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		PeriodDays:    days,
		DailyCheckins: checkins,
		DailySignups:  signups,
		DailyRevenue:  revenue,
	}, nil
}

func (s *service) AuditLogs(ctx context.Context, params audit.ListParams) ([]audit.Entry, api.Pagination, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit)
	entries, total, err := s.audits.List(ctx, params)
	if err != nil {
		return nil, api.Pagination{}, err
	}
	return entries, api.NewPagination(params.Page, params.Limit, total), nil
}

func (s *service) GymDashboard(ctx context.Context, actor auth.Actor, requestedGymID int) (*GymDashboard, error) {
	gymID, err := s.resolveGym(actor, requestedGymID)
	if err != nil {
		return nil, err
	}

	g, err := s.gyms.GetActiveByID(ctx, gymID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GymStats(ctx, gymID)
	if err != nil {
		return nil, err
	}
	hourly, err := s.repo.HourlyDistribution(ctx, gymID, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	trend, err := s.repo.DailyTrend(ctx, gymID, 7)
	if err != nil {
		return nil, err
	}

	return &GymDashboard{
		Gym: GymSummary{
			ID:                  g.ID,
			Name:                g.Name,
			Address:             g.Address,
			CurrentOccupancy:    g.CurrentOccupancy,
			MaxCapacity:         g.MaxCapacity,
			OccupancyPercentage: g.OccupancyPercentage(),
		},
		Stats:              *stats,
		HourlyDistribution: hourly,
		DailyTrend:         trend,
	}, nil
}

func (s *service) ActiveCheckins(ctx context.Context, actor auth.Actor, requestedGymID int) ([]checkin.ActiveEntry, error) {
	gymID, err := s.resolveGym(actor, requestedGymID)
	if err != nil {
		return nil, err
	}
	return s.checkins.ActiveByGym(ctx, gymID)
}

func (s *service) ForceCheckout(ctx context.Context, actor auth.Actor, checkinID int, reason, ip string) (*checkin.CheckIn, error) {
	return s.checkins.ForceCheckOut(ctx, actor, checkinID, reason, ip)
}

func (s *service) UpdateCapacity(ctx context.Context, actor auth.Actor, requestedGymID, newCapacity int, ip string) error {
	gymID, err := s.resolveGym(actor, requestedGymID)
	if err != nil {
		return err
	}

	g, err := s.gyms.GetByID(ctx, gymID)
	if err != nil {
		return err
	}
	// occupancy never exceeds capacity, so the new cap cannot undercut
	// whoever is currently inside
	if newCapacity < g.CurrentOccupancy {
		return ErrCapacityBelowOccupancy
	}

	if err := s.gyms.UpdateCapacity(ctx, gymID, newCapacity); err != nil {
		return err
	}

	s.logAudit(ctx, actor, audit.ActionUpdateCapacity, "gym", gymID,
		fmt.Sprintf("Gym capacity changed from %d to %d", g.MaxCapacity, newCapacity), ip)
	return nil
}

func (s *service) Report(ctx context.Context, actor auth.Actor, requestedGymID int, start, end time.Time) (*Report, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	gymID, err := s.resolveGym(actor, requestedGymID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.CheckinsReport(ctx, gymID, start, end)
	if err != nil {
		return nil, err
	}

	totalDuration := 0
	for _, row := range rows {
		if row.DurationMinutes != nil {
			totalDuration += *row.DurationMinutes
		}
	}
	summary := ReportSummary{
		TotalCheckins:        len(rows),
		TotalDurationMinutes: totalDuration,
	}
	if len(rows) > 0 {
		summary.AverageDurationMinutes = float64(totalDuration) / float64(len(rows))
	}

	return &Report{
		Period: ReportPeriod{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		Summary:  summary,
		Checkins: rows,
	}, nil
}

// resolveGym picks the gym a gym-scoped operation targets: super admins
// must name one explicitly, gym admins always act on their own gym.
func (s *service) resolveGym(actor auth.Actor, requestedGymID int) (int, error) {
	gymID := requestedGymID
	if actor.Role == auth.RoleGymAdmin {
		if actor.GymID == nil {
			return 0, ErrForbidden
		}
		gymID = *actor.GymID
	}
	if gymID == 0 {
		return 0, ErrGymRequired
	}
	if !auth.HasPermission(actor, auth.ActionManageGym, auth.Scope{GymID: gymID}) {
		return 0, ErrForbidden
	}
	return gymID, nil
}

func (s *service) logAudit(ctx context.Context, actor auth.Actor, action, entityType string, entityID int, description, ip string) {
	id := entityID
	if err := s.audits.Record(ctx, audit.Entry{
		UserID:      &actor.UserID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    &id,
		Description: description,
		IPAddress:   ip,
	}); err != nil {
		logger.Errorf("failed to record audit entry %s: %v", action, err)
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return page, limit
}

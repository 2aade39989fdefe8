package gym

import (
	"context"
	"math"
	"sort"
)

const defaultRadiusKm = 10.0

type Service interface {
	List(ctx context.Context, params ListParams) ([]GymWithDistance, error)
	Search(ctx context.Context, params ListParams) ([]GymWithDistance, error)
	GetByID(ctx context.Context, id int) (*Gym, error)
	Create(ctx context.Context, req CreateGymRequest) (*Gym, error)
	Update(ctx context.Context, id int, req UpdateGymRequest) (*Gym, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// List returns active gyms. When coordinates are supplied, gyms outside the
// radius are dropped and the rest sorted by distance ascending. The catalog
// is small, so a linear scan over the active set is deliberate.
func (s *service) List(ctx context.Context, params ListParams) ([]GymWithDistance, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}

	gyms, err := s.repo.ListActive(ctx, params.Limit)
	if err != nil {
		return nil, err
	}

	return withDistances(gyms, params, true), nil
}

// Search filters by case-insensitive substring on name/address. Distance is
// annotated but not used as a filter here, matching the public search
// contract.
func (s *service) Search(ctx context.Context, params ListParams) ([]GymWithDistance, error) {
	if params.Limit <= 0 || params.Limit > 50 {
		params.Limit = 20
	}

	gyms, err := s.repo.SearchActive(ctx, params.Query, params.Limit)
	if err != nil {
		return nil, err
	}

	return withDistances(gyms, params, false), nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Gym, error) {
	gym, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, ErrGymNotFound
	}
	return gym, nil
}

func (s *service) Create(ctx context.Context, req CreateGymRequest) (*Gym, error) {
	return s.repo.Create(ctx, req)
}

func (s *service) Update(ctx context.Context, id int, req UpdateGymRequest) (*Gym, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, ErrGymNotFound
	}
	return s.repo.Update(ctx, id, req)
}

func withDistances(gyms []Gym, params ListParams, filterByRadius bool) []GymWithDistance {
	hasCoords := params.Lat != nil && params.Lon != nil
	radius := params.RadiusKm
	if radius <= 0 {
		radius = defaultRadiusKm
	}

	result := make([]GymWithDistance, 0, len(gyms))
	for i := range gyms {
		g := &gyms[i]
		entry := GymWithDistance{
			ID:                  g.ID,
			Name:                g.Name,
			Address:             g.Address,
			Rating:              g.Rating,
			CurrentOccupancy:    g.CurrentOccupancy,
			MaxCapacity:         g.MaxCapacity,
			OccupancyPercentage: g.OccupancyPercentage(),
			Amenities:           g.AmenitiesList(),
		}

		if hasCoords {
			d := Distance(*params.Lat, *params.Lon, g.Latitude, g.Longitude)
			d = math.Round(d*100) / 100
			if filterByRadius && d > radius {
				continue
			}
			entry.DistanceKm = &d
		}

		result = append(result, entry)
	}

	if hasCoords {
		sort.SliceStable(result, func(i, j int) bool {
			return *result[i].DistanceKm < *result[j].DistanceKm
		})
	}

	return result
}

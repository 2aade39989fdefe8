package gym

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateGymRequest) (*Gym, error)
	GetByID(ctx context.Context, id int) (*Gym, error)
	GetActiveByID(ctx context.Context, id int) (*Gym, error)
	ListActive(ctx context.Context, limit int) ([]Gym, error)
	SearchActive(ctx context.Context, query string, limit int) ([]Gym, error)
	Update(ctx context.Context, id int, req UpdateGymRequest) (*Gym, error)
	UpdateCapacity(ctx context.Context, id, newCapacity int) error
	SetActive(ctx context.Context, id int, active bool) error
}

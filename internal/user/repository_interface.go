package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, phone, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, userID int) (bool, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*User, error)
	GetStats(ctx context.Context, userID int) (*Stats, error)
}

package user

import (
	"context"
	"time"
)

type Filter struct {
	Role   Role
	Status Status
	Search string
	Limit  int
	Offset int
}

// Repository describes user persistence needs from use cases.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]User, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetByID(ctx context.Context, userID string) (User, bool, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	Create(ctx context.Context, item User) error
	Update(ctx context.Context, item User) error
	Delete(ctx context.Context, userID string) error
	IncrementTasks(ctx context.Context, userID string, triggered, completed int) error
	TouchLogin(ctx context.Context, userID string, at time.Time) error
}

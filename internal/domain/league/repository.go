package league

import "context"

type Filter struct {
	Status Status
	Search string
	Limit  int
	Offset int
}

// Repository describes league persistence needs from use cases.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]League, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	Create(ctx context.Context, item League) error
	Update(ctx context.Context, item League) error
	Delete(ctx context.Context, leagueID string) error
}

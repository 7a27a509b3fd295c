package article

import "context"

type Filter struct {
	LeagueID string
	Search   string
	Limit    int
	Offset   int
}

// Repository describes article persistence needs from use cases.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Article, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetByID(ctx context.Context, articleID string) (Article, bool, error)
	GetByMatchID(ctx context.Context, matchID string) (Article, bool, error)
	Upsert(ctx context.Context, item Article) error
}

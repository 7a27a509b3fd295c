package match

import (
	"context"
	"time"
)

// Filter narrows match listings and counts. Zero values mean "any".
type Filter struct {
	LeagueID      string
	Status        Status
	AIStatus      AIStatus
	IsAnalyzed    *bool
	PublishStatus PublishStatus
	Search        string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// Repository describes match persistence needs from use cases.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Match, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Create(ctx context.Context, item Match) error
	Update(ctx context.Context, item Match) error
	Delete(ctx context.Context, matchID string) error
	// CompareAndSwapAnalysis stores next only when the persisted aiStatus
	// still equals expected. It reports whether the swap happened.
	CompareAndSwapAnalysis(ctx context.Context, matchID string, expected AIStatus, next Analysis) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]Match, error)
	ListRecentlyPublished(ctx context.Context, limit int) ([]Match, error)
}

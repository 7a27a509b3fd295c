package cache

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	basecache "github.com/riskibarqy/matchday-preview/internal/platform/cache"
)

type leagueLookup struct {
	league league.League
	found  bool
}

// LeagueRepository is a read-through cache in front of another league
// repository. Every trigger, article sync and dashboard refresh reads
// leagues, so a write purges all three stores rather than tracking keys.
type LeagueRepository struct {
	next   league.Repository
	lists  *basecache.Store[[]league.League]
	counts *basecache.Store[int]
	byID   *basecache.Store[leagueLookup]
}

func NewLeagueRepository(next league.Repository, ttl time.Duration) *LeagueRepository {
	return &LeagueRepository{
		next:   next,
		lists:  basecache.NewStore[[]league.League](ttl),
		counts: basecache.NewStore[int](ttl),
		byID:   basecache.NewStore[leagueLookup](ttl),
	}
}

func (r *LeagueRepository) List(ctx context.Context, filter league.Filter) ([]league.League, error) {
	items, err := r.lists.Load(ctx, filterKey(filter), func(ctx context.Context) ([]league.League, error) {
		return r.next.List(ctx, filter)
	})
	// callers may sort or append; hand out a copy
	return slices.Clone(items), err
}

func (r *LeagueRepository) Count(ctx context.Context, filter league.Filter) (int, error) {
	return r.counts.Load(ctx, filterKey(filter), func(ctx context.Context) (int, error) {
		return r.next.Count(ctx, filter)
	})
}

// GetByID caches misses too, so unknown ids do not reach the database twice.
func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	got, err := r.byID.Load(ctx, leagueID, func(ctx context.Context) (leagueLookup, error) {
		item, found, err := r.next.GetByID(ctx, leagueID)
		return leagueLookup{league: item, found: found}, err
	})
	if err != nil {
		return league.League{}, false, err
	}
	return got.league, got.found, nil
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) error {
	return r.purgeAfter(r.next.Create(ctx, item))
}

func (r *LeagueRepository) Update(ctx context.Context, item league.League) error {
	return r.purgeAfter(r.next.Update(ctx, item))
}

func (r *LeagueRepository) Delete(ctx context.Context, leagueID string) error {
	return r.purgeAfter(r.next.Delete(ctx, leagueID))
}

func (r *LeagueRepository) purgeAfter(err error) error {
	if err != nil {
		return err
	}
	r.lists.Purge()
	r.counts.Purge()
	r.byID.Purge()
	return nil
}

func filterKey(f league.Filter) string {
	return fmt.Sprintf("%s|%q|%d|%d", f.Status, f.Search, f.Limit, f.Offset)
}

package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
)

// LeagueRepository keeps leagues in a map and lists them by name, then id,
// the same order the postgres repository uses.
type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	r := &LeagueRepository{items: make(map[string]league.League, len(leagues))}
	for _, l := range leagues {
		r.items[l.ID] = l
	}
	return r
}

func (r *LeagueRepository) List(_ context.Context, filter league.Filter) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.matching(filter), filter.Limit, filter.Offset), nil
}

func (r *LeagueRepository) Count(_ context.Context, filter league.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matching(filter)), nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[leagueID]
	return l, ok, nil
}

func (r *LeagueRepository) Create(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.items[item.ID]; dup {
		return fmt.Errorf("league %s already exists", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *LeagueRepository) Update(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("league %s not found", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *LeagueRepository) Delete(_ context.Context, leagueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, leagueID)
	return nil
}

func (r *LeagueRepository) matching(filter league.Filter) []league.League {
	out := make([]league.League, 0, len(r.items))
	for _, l := range r.items {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(l.Name, filter.Search) && !containsFold(l.Country, filter.Search) {
			continue
		}
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b league.League) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out
}

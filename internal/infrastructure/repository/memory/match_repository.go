package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
	now   func() time.Time
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(matches))
	for _, item := range matches {
		items[item.ID] = item
	}
	return &MatchRepository{items: items, now: time.Now}
}

func (r *MatchRepository) List(_ context.Context, filter match.Filter) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.filtered(filter)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].MatchDate.After(items[j].MatchDate)
	})
	return paginate(items, filter.Limit, filter.Offset), nil
}

func (r *MatchRepository) Count(_ context.Context, filter match.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filtered(filter)), nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return item, true, nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("match %s already exists", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

// Update replaces fixture fields and keeps the stored analysis.
func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.items[item.ID]
	if !exists {
		return fmt.Errorf("match %s not found", item.ID)
	}
	item.Analysis = current.Analysis
	r.items[item.ID] = item
	return nil
}

func (r *MatchRepository) Delete(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, matchID)
	return nil
}

func (r *MatchRepository) CompareAndSwapAnalysis(_ context.Context, matchID string, expected match.AIStatus, next match.Analysis) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.items[matchID]
	if !exists || current.Analysis.AIStatus != expected {
		return false, nil
	}
	current.Analysis = next
	current.UpdatedAt = r.now().UTC()
	r.items[matchID] = current
	return true, nil
}

func (r *MatchRepository) ListRecent(_ context.Context, limit int) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.filtered(match.Filter{})
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return paginate(items, limit, 0), nil
}

func (r *MatchRepository) ListRecentlyPublished(_ context.Context, limit int) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	analyzed := true
	items := r.filtered(match.Filter{IsAnalyzed: &analyzed})
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Analysis.PublishedOrGeneratedAt().After(items[j].Analysis.PublishedOrGeneratedAt())
	})
	return paginate(items, limit, 0), nil
}

func (r *MatchRepository) filtered(filter match.Filter) []match.Match {
	out := make([]match.Match, 0, len(r.items))
	for _, item := range r.items {
		if filter.LeagueID != "" && item.LeagueID != filter.LeagueID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.AIStatus != "" && item.Analysis.AIStatus != filter.AIStatus {
			continue
		}
		if filter.IsAnalyzed != nil && item.Analysis.IsAnalyzed != *filter.IsAnalyzed {
			continue
		}
		if filter.PublishStatus != "" && item.Analysis.WordpressPost.Status != filter.PublishStatus {
			continue
		}
		if filter.Search != "" && !containsFold(item.HomeTeam.Name, filter.Search) && !containsFold(item.AwayTeam.Name, filter.Search) {
			continue
		}
		if filter.From != nil && item.MatchDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && item.MatchDate.After(*filter.To) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

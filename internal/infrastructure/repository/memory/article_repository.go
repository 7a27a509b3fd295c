package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/matchday-preview/internal/domain/article"
)

type ArticleRepository struct {
	mu    sync.RWMutex
	items map[string]article.Article
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{items: make(map[string]article.Article)}
}

func (r *ArticleRepository) List(_ context.Context, filter article.Filter) ([]article.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return paginate(r.filtered(filter), filter.Limit, filter.Offset), nil
}

func (r *ArticleRepository) Count(_ context.Context, filter article.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filtered(filter)), nil
}

func (r *ArticleRepository) GetByID(_ context.Context, articleID string) (article.Article, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[articleID]
	return item, ok, nil
}

func (r *ArticleRepository) GetByMatchID(_ context.Context, matchID string) (article.Article, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.MatchID == matchID {
			return item, true, nil
		}
	}
	return article.Article{}, false, nil
}

func (r *ArticleRepository) Upsert(_ context.Context, item article.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.MatchID == item.MatchID && id != item.ID {
			delete(r.items, id)
		}
	}
	r.items[item.ID] = item
	return nil
}

func (r *ArticleRepository) filtered(filter article.Filter) []article.Article {
	out := make([]article.Article, 0, len(r.items))
	for _, item := range r.items {
		if filter.LeagueID != "" && item.LeagueID != filter.LeagueID {
			continue
		}
		if filter.Search != "" && !containsFold(item.Title, filter.Search) && !containsFold(item.Content, filter.Search) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}

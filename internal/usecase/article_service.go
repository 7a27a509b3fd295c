package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchday-preview/internal/domain/article"
	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/platform/id"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

const (
	defaultArticleSyncWorkers = 4
	articleSyncPageSize       = 100
)

type ArticleSyncResult struct {
	ArticleID string
	MatchID   string
	Created   bool
}

type ArticleBulkSyncResult struct {
	Synced int
	Failed int
	Errors []string
}

type ArticleService struct {
	articleRepo article.Repository
	matchRepo   match.Repository
	leagueRepo  league.Repository
	idGen       id.Generator
	workers     int
	logger      *logging.Logger
	now         func() time.Time
}

func NewArticleService(
	articleRepo article.Repository,
	matchRepo match.Repository,
	leagueRepo league.Repository,
	idGen id.Generator,
	workers int,
	logger *logging.Logger,
) *ArticleService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if workers <= 0 {
		workers = defaultArticleSyncWorkers
	}
	return &ArticleService{
		articleRepo: articleRepo,
		matchRepo:   matchRepo,
		leagueRepo:  leagueRepo,
		idGen:       idGen,
		workers:     workers,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ArticleService) List(ctx context.Context, filter article.Filter) (Page[article.Article], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArticleService.List")
	defer span.End()

	filter.Search = strings.TrimSpace(filter.Search)
	filter.LeagueID = strings.TrimSpace(filter.LeagueID)
	filter.Limit, filter.Offset = normalizePaging(filter.Limit, filter.Offset)

	items, err := s.articleRepo.List(ctx, filter)
	if err != nil {
		return Page[article.Article]{}, fmt.Errorf("list articles: %w", err)
	}
	total, err := s.articleRepo.Count(ctx, filter)
	if err != nil {
		return Page[article.Article]{}, fmt.Errorf("count articles: %w", err)
	}
	return Page[article.Article]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *ArticleService) Get(ctx context.Context, articleID string) (article.Article, error) {
	articleID = strings.TrimSpace(articleID)
	if !id.Valid(articleID) {
		return article.Article{}, fmt.Errorf("%w: invalid article id %q", ErrInvalidInput, articleID)
	}

	item, exists, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return article.Article{}, fmt.Errorf("get article: %w", err)
	}
	if !exists {
		return article.Article{}, fmt.Errorf("%w: article=%s", ErrNotFound, articleID)
	}
	return item, nil
}

// SyncMatch derives or refreshes the article of a generated match.
func (s *ArticleService) SyncMatch(ctx context.Context, matchID string) (ArticleSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArticleService.SyncMatch")
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return ArticleSyncResult{}, err
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return ArticleSyncResult{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return ArticleSyncResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return s.syncOne(ctx, item)
}

// SyncAll refreshes articles for every generated match using a worker pool.
// Per-match failures are counted, not returned.
func (s *ArticleService) SyncAll(ctx context.Context) (ArticleBulkSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArticleService.SyncAll")
	defer span.End()

	matches, err := s.listGenerated(ctx)
	if err != nil {
		return ArticleBulkSyncResult{}, err
	}
	if len(matches) == 0 {
		return ArticleBulkSyncResult{}, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return ArticleBulkSyncResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		synced  atomic.Int32
		failed  atomic.Int32
		mu      sync.Mutex
		errs    []string
		workers sync.WaitGroup
	)

	for _, item := range matches {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if _, err := s.syncOne(ctx, item); err != nil {
				failed.Add(1)
				mu.Lock()
				errs = append(errs, item.ID+": "+err.Error())
				mu.Unlock()
				return
			}
			synced.Add(1)
		}); err != nil {
			workers.Done()
			return ArticleBulkSyncResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result := ArticleBulkSyncResult{
		Synced: int(synced.Load()),
		Failed: int(failed.Load()),
		Errors: errs,
	}
	s.logger.InfoContext(ctx, "article sync finished",
		"synced", result.Synced,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *ArticleService) listGenerated(ctx context.Context) ([]match.Match, error) {
	out := make([]match.Match, 0, articleSyncPageSize)
	for offset := 0; ; offset += articleSyncPageSize {
		page, err := s.matchRepo.List(ctx, match.Filter{
			AIStatus: match.AIStatusGenerated,
			Limit:    articleSyncPageSize,
			Offset:   offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list generated matches: %w", err)
		}
		out = append(out, page...)
		if len(page) < articleSyncPageSize {
			return out, nil
		}
	}
}

func (s *ArticleService) syncOne(ctx context.Context, item match.Match) (ArticleSyncResult, error) {
	if item.Analysis.AIStatus != match.AIStatusGenerated {
		return ArticleSyncResult{}, fmt.Errorf("%w: %w", ErrConflict, match.ErrAnalysisNotGenerated)
	}

	existing, exists, err := s.articleRepo.GetByMatchID(ctx, item.ID)
	if err != nil {
		return ArticleSyncResult{}, fmt.Errorf("get article by match: %w", err)
	}

	articleID := existing.ID
	if !exists {
		articleID, err = s.idGen.NewID()
		if err != nil {
			return ArticleSyncResult{}, fmt.Errorf("generate article id: %w", err)
		}
	}

	l, _, err := s.leagueRepo.GetByID(ctx, item.LeagueID)
	if err != nil {
		return ArticleSyncResult{}, fmt.Errorf("get league: %w", err)
	}

	now := s.now().UTC()
	projected, err := article.FromMatch(articleID, item, l, now)
	if err != nil {
		return ArticleSyncResult{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	projected.CreatedAt = now
	if exists {
		projected.CreatedAt = existing.CreatedAt
	}
	projected.UpdatedAt = now

	if err := s.articleRepo.Upsert(ctx, projected); err != nil {
		return ArticleSyncResult{}, fmt.Errorf("upsert article: %w", err)
	}

	return ArticleSyncResult{ArticleID: articleID, MatchID: item.ID, Created: !exists}, nil
}

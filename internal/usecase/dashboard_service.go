package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultDashboardTTL  = 60 * time.Second
	dashboardRecentLimit = 5
)

// SnapshotCache stores one computed value for a bounded time.
type SnapshotCache[T any] interface {
	GetOrCompute(ctx context.Context, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error)
}

type DashboardMatch struct {
	ID         string    `json:"id"`
	LeagueID   string    `json:"leagueId"`
	HomeTeam   string    `json:"homeTeam"`
	AwayTeam   string    `json:"awayTeam"`
	HomeLogo   string    `json:"homeLogo,omitempty"`
	AwayLogo   string    `json:"awayLogo,omitempty"`
	MatchDate  time.Time `json:"matchDate"`
	Status     string    `json:"status"`
	AIStatus   string    `json:"aiStatus"`
	IsAnalyzed bool      `json:"isAnalyzed"`
	CreatedAt  time.Time `json:"createdAt"`
}

type DashboardArticle struct {
	MatchID        string       `json:"matchId"`
	HomeTeam       string       `json:"homeTeam"`
	AwayTeam       string       `json:"awayTeam"`
	MatchDate      time.Time    `json:"matchDate"`
	PredictedScore *match.Score `json:"predictedScore,omitempty"`
	PostURL        string       `json:"postUrl,omitempty"`
	PublishStatus  string       `json:"publishStatus,omitempty"`
	PublishedAt    time.Time    `json:"publishedAt"`
}

// Dashboard is the aggregate served to the admin home screen. It is cached
// as a whole, so it carries JSON tags for shared cache backends.
type Dashboard struct {
	TotalMatches    int                `json:"totalMatches"`
	PendingAnalysis int                `json:"pendingAnalysis"`
	TotalArticles   int                `json:"totalArticles"`
	TotalUsers      int                `json:"totalUsers"`
	TotalLeagues    int                `json:"totalLeagues"`
	ActiveLeagues   int                `json:"activeLeagues"`
	RecentMatches   []DashboardMatch   `json:"recentMatches"`
	RecentArticles  []DashboardArticle `json:"recentArticles"`
	ComputedAt      time.Time          `json:"computedAt"`
}

type DashboardService struct {
	matchRepo  match.Repository
	leagueRepo league.Repository
	userRepo   user.Repository
	cache      SnapshotCache[Dashboard]
	ttl        time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

func NewDashboardService(
	matchRepo match.Repository,
	leagueRepo league.Repository,
	userRepo user.Repository,
	cache SnapshotCache[Dashboard],
	ttl time.Duration,
	logger *logging.Logger,
) *DashboardService {
	if ttl <= 0 {
		ttl = DefaultDashboardTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardService{
		matchRepo:  matchRepo,
		leagueRepo: leagueRepo,
		userRepo:   userRepo,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the dashboard and whether it was served from cache.
func (s *DashboardService) Get(ctx context.Context) (Dashboard, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	if s.cache == nil {
		out, err := s.compute(ctx)
		return out, false, err
	}

	out, hit, err := s.cache.GetOrCompute(ctx, s.ttl, s.compute)
	if err != nil {
		return Dashboard{}, false, err
	}
	return out, hit, nil
}

func (s *DashboardService) compute(ctx context.Context) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.compute")
	defer span.End()

	notAnalyzed := false
	analyzed := true

	var out Dashboard
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		n, err := s.matchRepo.Count(ctx, match.Filter{})
		if err != nil {
			return fmt.Errorf("count matches: %w", err)
		}
		out.TotalMatches = n
		return nil
	})
	p.Go(func(ctx context.Context) error {
		n, err := s.matchRepo.Count(ctx, match.Filter{IsAnalyzed: &notAnalyzed})
		if err != nil {
			return fmt.Errorf("count pending analysis: %w", err)
		}
		out.PendingAnalysis = n
		return nil
	})
	p.Go(func(ctx context.Context) error {
		n, err := s.matchRepo.Count(ctx, match.Filter{IsAnalyzed: &analyzed, PublishStatus: match.PublishPublished})
		if err != nil {
			return fmt.Errorf("count published articles: %w", err)
		}
		out.TotalArticles = n
		return nil
	})
	p.Go(func(ctx context.Context) error {
		n, err := s.userRepo.Count(ctx, user.Filter{})
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		out.TotalUsers = n
		return nil
	})
	p.Go(func(ctx context.Context) error {
		n, err := s.leagueRepo.Count(ctx, league.Filter{})
		if err != nil {
			return fmt.Errorf("count leagues: %w", err)
		}
		out.TotalLeagues = n
		return nil
	})
	p.Go(func(ctx context.Context) error {
		n, err := s.leagueRepo.Count(ctx, league.Filter{Status: league.StatusActive})
		if err != nil {
			return fmt.Errorf("count active leagues: %w", err)
		}
		out.ActiveLeagues = n
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.matchRepo.ListRecent(ctx, dashboardRecentLimit)
		if err != nil {
			return fmt.Errorf("list recent matches: %w", err)
		}
		out.RecentMatches = toDashboardMatches(items)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.matchRepo.ListRecentlyPublished(ctx, dashboardRecentLimit)
		if err != nil {
			return fmt.Errorf("list recent articles: %w", err)
		}
		out.RecentArticles = toDashboardArticles(items)
		return nil
	})

	if err := p.Wait(); err != nil {
		return Dashboard{}, err
	}

	out.ComputedAt = s.now().UTC()
	s.logger.DebugContext(ctx, "dashboard computed",
		"total_matches", out.TotalMatches,
		"pending_analysis", out.PendingAnalysis,
	)
	return out, nil
}

func toDashboardMatches(items []match.Match) []DashboardMatch {
	out := make([]DashboardMatch, 0, len(items))
	for _, item := range items {
		out = append(out, DashboardMatch{
			ID:         item.ID,
			LeagueID:   item.LeagueID,
			HomeTeam:   item.HomeTeam.Name,
			AwayTeam:   item.AwayTeam.Name,
			HomeLogo:   item.HomeTeam.Logo,
			AwayLogo:   item.AwayTeam.Logo,
			MatchDate:  item.MatchDate,
			Status:     string(item.Status),
			AIStatus:   string(item.Analysis.AIStatus),
			IsAnalyzed: item.Analysis.IsAnalyzed,
			CreatedAt:  item.CreatedAt,
		})
	}
	return out
}

func toDashboardArticles(items []match.Match) []DashboardArticle {
	out := make([]DashboardArticle, 0, len(items))
	for _, item := range items {
		out = append(out, DashboardArticle{
			MatchID:        item.ID,
			HomeTeam:       item.HomeTeam.Name,
			AwayTeam:       item.AwayTeam.Name,
			MatchDate:      item.MatchDate,
			PredictedScore: item.Analysis.AIAnalysis.PredictedScore,
			PostURL:        item.Analysis.WordpressPost.URL,
			PublishStatus:  string(item.Analysis.WordpressPost.Status),
			PublishedAt:    item.Analysis.PublishedOrGeneratedAt(),
		})
	}
	return out
}

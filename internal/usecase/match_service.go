package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/platform/id"
)

// MatchInput carries fixture fields. Analysis state is never set from here.
type MatchInput struct {
	LeagueID  string
	HomeTeam  match.TeamSide
	AwayTeam  match.TeamSide
	MatchDate time.Time
	Venue     string
	Status    match.Status
	Round     string
}

type MatchService struct {
	matchRepo  match.Repository
	leagueRepo league.Repository
	idGen      id.Generator
	now        func() time.Time
}

func NewMatchService(matchRepo match.Repository, leagueRepo league.Repository, idGen id.Generator) *MatchService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	return &MatchService{
		matchRepo:  matchRepo,
		leagueRepo: leagueRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

func (s *MatchService) List(ctx context.Context, filter match.Filter) (Page[match.Match], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	filter.LeagueID = strings.TrimSpace(filter.LeagueID)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" && !filter.Status.Valid() {
		return Page[match.Match]{}, fmt.Errorf("%w: unsupported match status %q", ErrInvalidInput, filter.Status)
	}
	switch filter.AIStatus {
	case "", match.AIStatusNotGenerated, match.AIStatusProcessing, match.AIStatusGenerated:
	default:
		return Page[match.Match]{}, fmt.Errorf("%w: unsupported ai status %q", ErrInvalidInput, filter.AIStatus)
	}
	filter.Limit, filter.Offset = normalizePaging(filter.Limit, filter.Offset)

	items, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return Page[match.Match]{}, fmt.Errorf("list matches: %w", err)
	}
	total, err := s.matchRepo.Count(ctx, filter)
	if err != nil {
		return Page[match.Match]{}, fmt.Errorf("count matches: %w", err)
	}

	return Page[match.Match]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

// Create stores a new fixture as scheduled with an idle analysis.
func (s *MatchService) Create(ctx context.Context, input MatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	if err := s.ensureLeague(ctx, input.LeagueID); err != nil {
		return match.Match{}, err
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	// New fixtures always start scheduled.
	input.Status = ""

	now := s.now().UTC()
	item := applyMatchInput(match.Match{
		ID:        matchID,
		Status:    match.StatusScheduled,
		Analysis:  match.NewAnalysis(),
		CreatedAt: now,
	}, input)
	item.UpdatedAt = now
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	return item, nil
}

// Update changes fixture fields; the analysis sub-state is left untouched.
func (s *MatchService) Update(ctx context.Context, matchID string, input MatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Update")
	defer span.End()

	current, err := s.Get(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if strings.TrimSpace(input.LeagueID) != "" && strings.TrimSpace(input.LeagueID) != current.LeagueID {
		if err := s.ensureLeague(ctx, input.LeagueID); err != nil {
			return match.Match{}, err
		}
	}

	item := applyMatchInput(current, input)
	item.UpdatedAt = s.now().UTC()
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.matchRepo.Update(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	return item, nil
}

func (s *MatchService) Delete(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	current, err := s.Get(ctx, matchID)
	if err != nil {
		return err
	}
	if current.Analysis.AIStatus == match.AIStatusProcessing {
		return fmt.Errorf("%w: %w", ErrConflict, match.ErrAnalysisInProgress)
	}

	if err := s.matchRepo.Delete(ctx, current.ID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

// RecordPublication stores the downstream publishing outcome of a generated
// match.
func (s *MatchService) RecordPublication(ctx context.Context, matchID string, post match.WordpressPost) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RecordPublication")
	defer span.End()

	current, err := s.Get(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	now := s.now().UTC()
	next, err := current.Analysis.Publish(post, now)
	if errors.Is(err, match.ErrUnsupportedPublishStatus) {
		return match.Match{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err != nil {
		return match.Match{}, analysisConflict(err)
	}

	swapped, err := s.matchRepo.CompareAndSwapAnalysis(ctx, current.ID, match.AIStatusGenerated, next)
	if err != nil {
		return match.Match{}, fmt.Errorf("persist publication: %w", err)
	}
	if !swapped {
		return match.Match{}, fmt.Errorf("%w: analysis state changed concurrently", ErrConflict)
	}

	current.Analysis = next
	current.UpdatedAt = now
	return current, nil
}

func (s *MatchService) ensureLeague(ctx context.Context, leagueID string) error {
	leagueID, err := normalizeLeagueID(leagueID)
	if err != nil {
		return err
	}
	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return nil
}

func applyMatchInput(item match.Match, input MatchInput) match.Match {
	if v := strings.TrimSpace(input.LeagueID); v != "" {
		item.LeagueID = v
	}
	if v := strings.TrimSpace(input.HomeTeam.Name); v != "" {
		item.HomeTeam.Name = v
	}
	if v := strings.TrimSpace(input.HomeTeam.Logo); v != "" {
		item.HomeTeam.Logo = v
	}
	if input.HomeTeam.Score != nil {
		item.HomeTeam.Score = input.HomeTeam.Score
	}
	if v := strings.TrimSpace(input.AwayTeam.Name); v != "" {
		item.AwayTeam.Name = v
	}
	if v := strings.TrimSpace(input.AwayTeam.Logo); v != "" {
		item.AwayTeam.Logo = v
	}
	if input.AwayTeam.Score != nil {
		item.AwayTeam.Score = input.AwayTeam.Score
	}
	if !input.MatchDate.IsZero() {
		item.MatchDate = input.MatchDate.UTC()
	}
	if v := strings.TrimSpace(input.Venue); v != "" {
		item.Venue = v
	}
	if input.Status != "" {
		item.Status = input.Status
	}
	if v := strings.TrimSpace(input.Round); v != "" {
		item.Round = v
	}
	return item
}

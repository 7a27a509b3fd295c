package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/platform/id"
)

type LeagueInput struct {
	Name    string
	Country string
	Season  string
	Logo    string
	Status  league.Status
}

type LeagueService struct {
	leagueRepo league.Repository
	matchRepo  match.Repository
	idGen      id.Generator
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, matchRepo match.Repository, idGen id.Generator) *LeagueService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	return &LeagueService{
		leagueRepo: leagueRepo,
		matchRepo:  matchRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

func (s *LeagueService) List(ctx context.Context, filter league.Filter) (Page[league.League], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.List")
	defer span.End()

	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" && !filter.Status.Valid() {
		return Page[league.League]{}, fmt.Errorf("%w: unsupported league status %q", ErrInvalidInput, filter.Status)
	}
	filter.Limit, filter.Offset = normalizePaging(filter.Limit, filter.Offset)

	items, err := s.leagueRepo.List(ctx, filter)
	if err != nil {
		return Page[league.League]{}, fmt.Errorf("list leagues: %w", err)
	}
	total, err := s.leagueRepo.Count(ctx, filter)
	if err != nil {
		return Page[league.League]{}, fmt.Errorf("count leagues: %w", err)
	}

	return Page[league.League]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *LeagueService) Get(ctx context.Context, leagueID string) (league.League, error) {
	leagueID, err := normalizeLeagueID(leagueID)
	if err != nil {
		return league.League{}, err
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return item, nil
}

func (s *LeagueService) Create(ctx context.Context, input LeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Create")
	defer span.End()

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	now := s.now().UTC()
	item := applyLeagueInput(league.League{ID: leagueID, CreatedAt: now}, input)
	if item.Status == "" {
		item.Status = league.StatusActive
	}
	item.UpdatedAt = now
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.leagueRepo.Create(ctx, item); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}
	return item, nil
}

func (s *LeagueService) Update(ctx context.Context, leagueID string, input LeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Update")
	defer span.End()

	current, err := s.Get(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}

	item := applyLeagueInput(current, input)
	item.UpdatedAt = s.now().UTC()
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.leagueRepo.Update(ctx, item); err != nil {
		return league.League{}, fmt.Errorf("update league: %w", err)
	}
	return item, nil
}

// Delete removes a league that no match references.
func (s *LeagueService) Delete(ctx context.Context, leagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Delete")
	defer span.End()

	current, err := s.Get(ctx, leagueID)
	if err != nil {
		return err
	}

	inUse, err := s.matchRepo.Count(ctx, match.Filter{LeagueID: current.ID})
	if err != nil {
		return fmt.Errorf("count league matches: %w", err)
	}
	if inUse > 0 {
		return fmt.Errorf("%w: league %s still has %d matches", ErrConflict, current.ID, inUse)
	}

	if err := s.leagueRepo.Delete(ctx, current.ID); err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	return nil
}

func applyLeagueInput(item league.League, input LeagueInput) league.League {
	if v := strings.TrimSpace(input.Name); v != "" {
		item.Name = v
	}
	if v := strings.TrimSpace(input.Country); v != "" {
		item.Country = v
	}
	if v := strings.TrimSpace(input.Season); v != "" {
		item.Season = v
	}
	if v := strings.TrimSpace(input.Logo); v != "" {
		item.Logo = v
	}
	if input.Status != "" {
		item.Status = input.Status
	}
	return item
}

func normalizeLeagueID(leagueID string) (string, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return "", fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if !id.Valid(leagueID) {
		return "", fmt.Errorf("%w: invalid league id %q", ErrInvalidInput, leagueID)
	}
	return leagueID, nil
}

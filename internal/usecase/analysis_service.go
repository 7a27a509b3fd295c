package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/platform/id"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

const maxAnalysisSwapAttempts = 3

type AnalysisConfig struct {
	// CallbackBaseURL is the public base URL the workflow engine calls back on.
	CallbackBaseURL string
	// RequireProcessingOnCallback rejects results for matches that are not
	// currently processing.
	RequireProcessingOnCallback bool
	DispatchTimeout             time.Duration
	Mode                        workflow.Mode
}

// ArticleSyncer refreshes the article projection of a generated match.
type ArticleSyncer interface {
	SyncMatch(ctx context.Context, matchID string) (ArticleSyncResult, error)
}

type DispatchOutcome struct {
	DispatchID string
	Mode       workflow.Mode
	Status     workflow.DispatchStatus
	MessageID  string
	Error      string
}

type TriggerResult struct {
	Match    match.Match
	Dispatch DispatchOutcome
}

type AnalysisService struct {
	matchRepo    match.Repository
	leagueRepo   league.Repository
	userRepo     user.Repository
	dispatcher   workflow.Dispatcher
	dispatchRepo workflow.Repository
	articles     ArticleSyncer
	idGen        id.Generator
	cfg          AnalysisConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewAnalysisService(
	matchRepo match.Repository,
	leagueRepo league.Repository,
	userRepo user.Repository,
	dispatcher workflow.Dispatcher,
	dispatchRepo workflow.Repository,
	articles ArticleSyncer,
	idGen id.Generator,
	cfg AnalysisConfig,
	logger *logging.Logger,
) *AnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 10 * time.Second
	}
	if cfg.Mode == "" {
		cfg.Mode = workflow.ModeNoop
	}
	cfg.CallbackBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CallbackBaseURL), "/")

	return &AnalysisService{
		matchRepo:    matchRepo,
		leagueRepo:   leagueRepo,
		userRepo:     userRepo,
		dispatcher:   dispatcher,
		dispatchRepo: dispatchRepo,
		articles:     articles,
		idGen:        idGen,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// TriggerAnalysis moves a scheduled match into processing and hands it to the
// workflow engine. The processing state is committed before dispatch and is
// kept when the dispatch fails; the outcome is reported in the result.
func (s *AnalysisService) TriggerAnalysis(ctx context.Context, principal user.Principal, matchID string) (TriggerResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.TriggerAnalysis")
	defer span.End()

	if strings.TrimSpace(principal.UserID) == "" {
		return TriggerResult{}, fmt.Errorf("%w: session is required", ErrUnauthorized)
	}
	if !principal.HasRole(user.RoleAdmin, user.RoleKTV) {
		return TriggerResult{}, fmt.Errorf("%w: role %s cannot trigger analysis", ErrForbidden, principal.Role)
	}

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return TriggerResult{}, err
	}

	current, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return TriggerResult{}, err
	}
	if err := current.CanTriggerAnalysis(); err != nil {
		return TriggerResult{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}

	dispatchID, err := s.idGen.NewID()
	if err != nil {
		return TriggerResult{}, fmt.Errorf("generate dispatch id: %w", err)
	}

	now := s.now().UTC()
	next, err := current.Analysis.Start(principal.UserID, dispatchID, now)
	if err != nil {
		return TriggerResult{}, analysisConflict(err)
	}

	swapped, err := s.matchRepo.CompareAndSwapAnalysis(ctx, matchID, current.Analysis.AIStatus, next)
	if err != nil {
		return TriggerResult{}, fmt.Errorf("persist analysis start: %w", err)
	}
	if !swapped {
		return TriggerResult{}, s.swapConflict(ctx, matchID)
	}

	current.Analysis = next
	current.UpdatedAt = now

	if err := s.userRepo.IncrementTasks(ctx, principal.UserID, 1, 0); err != nil {
		s.logger.WarnContext(ctx, "increment triggered task counter failed",
			"user_id", principal.UserID,
			"match_id", matchID,
			"error", err,
		)
	}

	outcome := s.dispatch(ctx, current, dispatchID, principal.UserID)
	return TriggerResult{Match: current, Dispatch: outcome}, nil
}

// CompleteAnalysis merges a workflow result into the match. Articles are
// replaced wholesale, so replaying the same result is harmless.
func (s *AnalysisService) CompleteAnalysis(ctx context.Context, matchID string, result match.Result) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.CompleteAnalysis")
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}
	if err := result.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	for attempt := 0; attempt < maxAnalysisSwapAttempts; attempt++ {
		current, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return match.Match{}, err
		}
		if s.cfg.RequireProcessingOnCallback && current.Analysis.AIStatus != match.AIStatusProcessing {
			return match.Match{}, fmt.Errorf("%w: %w: current state is %s", ErrConflict, match.ErrAnalysisNotProcessing, current.Analysis.AIStatus)
		}

		now := s.now().UTC()
		next, err := current.Analysis.Complete(result, now)
		if err != nil {
			return match.Match{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		swapped, err := s.matchRepo.CompareAndSwapAnalysis(ctx, matchID, current.Analysis.AIStatus, next)
		if err != nil {
			return match.Match{}, fmt.Errorf("persist analysis result: %w", err)
		}
		if !swapped {
			continue
		}

		wasProcessing := current.Analysis.AIStatus == match.AIStatusProcessing
		current.Analysis = next
		current.UpdatedAt = now

		s.afterCompletion(ctx, current, wasProcessing)
		return current, nil
	}

	return match.Match{}, fmt.Errorf("%w: analysis state kept changing, retry the callback", ErrConflict)
}

// FailAnalysis records a failure reported by the workflow engine. The match
// returns to not_generated and can be triggered again. A non-empty dispatchID
// must name the run currently in processing.
func (s *AnalysisService) FailAnalysis(ctx context.Context, matchID, dispatchID, reason string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.FailAnalysis")
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}

	current, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if dispatchID = strings.TrimSpace(dispatchID); dispatchID != "" && dispatchID != current.Analysis.DispatchID {
		return match.Match{}, fmt.Errorf("%w: %w: got %s", ErrConflict, match.ErrDispatchMismatch, dispatchID)
	}

	next, err := current.Analysis.Fail(reason)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}

	swapped, err := s.matchRepo.CompareAndSwapAnalysis(ctx, matchID, match.AIStatusProcessing, next)
	if err != nil {
		return match.Match{}, fmt.Errorf("persist analysis failure: %w", err)
	}
	if !swapped {
		return match.Match{}, s.swapConflict(ctx, matchID)
	}

	s.recordDispatchEvent(ctx, workflow.DispatchEvent{
		DispatchID:   current.Analysis.DispatchID,
		MatchID:      matchID,
		Mode:         s.cfg.Mode,
		Status:       workflow.StatusFailed,
		ErrorMessage: next.AIAnalysis.FailureReason,
	})
	s.logger.WarnContext(ctx, "analysis workflow reported failure",
		"match_id", matchID,
		"dispatch_id", current.Analysis.DispatchID,
		"reason", next.AIAnalysis.FailureReason,
	)

	current.Analysis = next
	current.UpdatedAt = s.now().UTC()
	return current, nil
}

// ResetAnalysis releases a match stuck in processing. Admin only.
func (s *AnalysisService) ResetAnalysis(ctx context.Context, principal user.Principal, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.ResetAnalysis")
	defer span.End()

	if !principal.HasRole(user.RoleAdmin) {
		return match.Match{}, fmt.Errorf("%w: only admin can reset analysis", ErrForbidden)
	}

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}

	current, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	next, err := current.Analysis.Reset()
	if err != nil {
		return match.Match{}, analysisConflict(err)
	}

	swapped, err := s.matchRepo.CompareAndSwapAnalysis(ctx, matchID, match.AIStatusProcessing, next)
	if err != nil {
		return match.Match{}, fmt.Errorf("persist analysis reset: %w", err)
	}
	if !swapped {
		return match.Match{}, s.swapConflict(ctx, matchID)
	}

	s.logger.InfoContext(ctx, "analysis reset by operator",
		"match_id", matchID,
		"user_id", principal.UserID,
		"dispatch_id", current.Analysis.DispatchID,
	)

	current.Analysis = next
	current.UpdatedAt = s.now().UTC()
	return current, nil
}

func (s *AnalysisService) dispatch(ctx context.Context, item match.Match, dispatchID, requestedBy string) DispatchOutcome {
	job := workflow.Job{
		DispatchID:         dispatchID,
		MatchID:            item.ID,
		LeagueID:           item.LeagueID,
		HomeTeam:           item.HomeTeam.Name,
		AwayTeam:           item.AwayTeam.Name,
		MatchDate:          item.MatchDate,
		Venue:              item.Venue,
		Round:              item.Round,
		CallbackURL:        s.callbackURL(item.ID, false),
		FailureCallbackURL: s.callbackURL(item.ID, true),
		RequestedBy:        requestedBy,
	}
	if l, exists, err := s.leagueRepo.GetByID(ctx, item.LeagueID); err == nil && exists {
		job.LeagueName = l.Name
	}

	outcome := DispatchOutcome{DispatchID: dispatchID, Mode: s.cfg.Mode}
	payload := map[string]any{
		"match_id":  item.ID,
		"home_team": job.HomeTeam,
		"away_team": job.AwayTeam,
		"callback":  job.CallbackURL,
	}

	if s.dispatcher == nil {
		outcome.Status = workflow.StatusSkipped
		s.logger.WarnContext(ctx, "no workflow dispatcher configured, analysis left in processing",
			"match_id", item.ID,
			"dispatch_id", dispatchID,
		)
		return outcome
	}

	// Processing is already committed, so the dispatch outlives the request.
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.DispatchTimeout)
	defer cancel()

	receipt, err := s.dispatcher.Dispatch(dispatchCtx, job)
	if receipt.Mode != "" {
		outcome.Mode = receipt.Mode
	}
	if err != nil {
		outcome.Status = workflow.StatusFailed
		outcome.Error = err.Error()
		s.recordDispatchEvent(ctx, workflow.DispatchEvent{
			DispatchID:   dispatchID,
			MatchID:      item.ID,
			Mode:         outcome.Mode,
			Status:       workflow.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
		})
		s.logger.ErrorContext(ctx, "analysis workflow dispatch failed",
			"match_id", item.ID,
			"dispatch_id", dispatchID,
			"mode", outcome.Mode,
			"error", err,
		)
		return outcome
	}

	outcome.MessageID = receipt.MessageID
	outcome.Status = workflow.StatusSent
	if receipt.Skipped {
		outcome.Status = workflow.StatusSkipped
	}
	s.recordDispatchEvent(ctx, workflow.DispatchEvent{
		DispatchID: dispatchID,
		MatchID:    item.ID,
		Mode:       outcome.Mode,
		Status:     outcome.Status,
		Payload:    payload,
	})
	s.logger.InfoContext(ctx, "analysis workflow dispatched",
		"match_id", item.ID,
		"dispatch_id", dispatchID,
		"mode", outcome.Mode,
		"status", outcome.Status,
		"message_id", receipt.MessageID,
	)
	return outcome
}

func (s *AnalysisService) afterCompletion(ctx context.Context, item match.Match, wasProcessing bool) {
	if wasProcessing {
		s.recordDispatchEvent(ctx, workflow.DispatchEvent{
			DispatchID: item.Analysis.DispatchID,
			MatchID:    item.ID,
			Mode:       s.cfg.Mode,
			Status:     workflow.StatusCompleted,
			Payload: map[string]any{
				"article_count": len(item.Analysis.Articles),
			},
		})
		if triggeredBy := strings.TrimSpace(item.Analysis.TriggeredBy); triggeredBy != "" {
			if err := s.userRepo.IncrementTasks(ctx, triggeredBy, 0, 1); err != nil {
				s.logger.WarnContext(ctx, "increment completed task counter failed",
					"user_id", triggeredBy,
					"match_id", item.ID,
					"error", err,
				)
			}
		}
	}

	if s.articles != nil {
		if _, err := s.articles.SyncMatch(ctx, item.ID); err != nil {
			s.logger.WarnContext(ctx, "sync article after analysis failed",
				"match_id", item.ID,
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "analysis result stored",
		"match_id", item.ID,
		"dispatch_id", item.Analysis.DispatchID,
		"article_count", len(item.Analysis.Articles),
		"was_processing", wasProcessing,
	)
}

func (s *AnalysisService) loadMatch(ctx context.Context, matchID string) (match.Match, error) {
	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

// swapConflict explains a lost compare-and-swap using the latest state.
func (s *AnalysisService) swapConflict(ctx context.Context, matchID string) error {
	latest, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	switch latest.Analysis.AIStatus {
	case match.AIStatusProcessing:
		return fmt.Errorf("%w: %w", ErrConflict, match.ErrAnalysisInProgress)
	case match.AIStatusGenerated:
		return fmt.Errorf("%w: %w", ErrConflict, match.ErrAnalysisGenerated)
	default:
		return fmt.Errorf("%w: analysis state changed concurrently", ErrConflict)
	}
}

func (s *AnalysisService) recordDispatchEvent(ctx context.Context, event workflow.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	event.TraceID, event.SpanID = spanIDs(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record analysis dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func (s *AnalysisService) callbackURL(matchID string, failure bool) string {
	path := "/v1/matches/" + matchID + "/analysis-callback"
	if failure {
		path += "/failure"
	}
	return s.cfg.CallbackBaseURL + path
}

func analysisConflict(err error) error {
	switch {
	case errors.Is(err, match.ErrAnalysisInProgress),
		errors.Is(err, match.ErrAnalysisGenerated),
		errors.Is(err, match.ErrAnalysisNotProcessing),
		errors.Is(err, match.ErrAnalysisNotGenerated):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}

func normalizeMatchID(matchID string) (string, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if !id.Valid(matchID) {
		return "", fmt.Errorf("%w: invalid match id %q", ErrInvalidInput, matchID)
	}
	return matchID, nil
}

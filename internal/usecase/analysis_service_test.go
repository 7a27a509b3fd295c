package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	leaguemock "github.com/riskibarqy/matchday-preview/internal/mocks/domain/league"
	matchmock "github.com/riskibarqy/matchday-preview/internal/mocks/domain/match"
	usermock "github.com/riskibarqy/matchday-preview/internal/mocks/domain/user"
	workflowmock "github.com/riskibarqy/matchday-preview/internal/mocks/domain/workflow"
	"github.com/stretchr/testify/mock"
)

const (
	testMatchID    = "0194f3a0-0000-7000-8000-0000000000b1"
	testLeagueID   = "0194f3a0-0000-7000-8000-000000000001"
	testAdminID    = "0194f3a0-0000-7000-8000-0000000000a1"
	testDispatchID = "0194f3a0-0000-7000-8000-0000000000d1"
)

var testNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

type staticIDGenerator struct {
	ids []string
	mu  sync.Mutex
}

func (g *staticIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return "", errors.New("no ids left")
	}
	next := g.ids[0]
	g.ids = g.ids[1:]
	return next, nil
}

type recordingArticleSyncer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingArticleSyncer) SyncMatch(_ context.Context, matchID string) (ArticleSyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, matchID)
	return ArticleSyncResult{MatchID: matchID}, r.err
}

type analysisFixture struct {
	matches    *matchmock.Repository
	leagues    *leaguemock.Repository
	users      *usermock.Repository
	dispatcher *workflowmock.Dispatcher
	ledger     *workflowmock.Repository
	articles   *recordingArticleSyncer
	service    *AnalysisService
}

func newAnalysisFixture(t *testing.T, cfg AnalysisConfig) *analysisFixture {
	t.Helper()

	f := &analysisFixture{
		matches:    matchmock.NewRepository(t),
		leagues:    leaguemock.NewRepository(t),
		users:      usermock.NewRepository(t),
		dispatcher: workflowmock.NewDispatcher(t),
		ledger:     workflowmock.NewRepository(t),
		articles:   &recordingArticleSyncer{},
	}
	if cfg.CallbackBaseURL == "" {
		cfg.CallbackBaseURL = "https://api.matchday.test/"
	}
	if cfg.Mode == "" {
		cfg.Mode = workflow.ModeWebhook
	}
	f.service = NewAnalysisService(
		f.matches,
		f.leagues,
		f.users,
		f.dispatcher,
		f.ledger,
		f.articles,
		&staticIDGenerator{ids: []string{testDispatchID}},
		cfg,
		nil,
	)
	f.service.now = func() time.Time { return testNow }
	return f
}

func scheduledMatch() match.Match {
	return match.Match{
		ID:        testMatchID,
		LeagueID:  testLeagueID,
		HomeTeam:  match.TeamSide{Name: "Persija Jakarta"},
		AwayTeam:  match.TeamSide{Name: "Persib Bandung"},
		MatchDate: testNow.Add(48 * time.Hour),
		Venue:     "Jakarta International Stadium",
		Status:    match.StatusScheduled,
		Round:     "Week 24",
		Analysis:  match.NewAnalysis(),
	}
}

func processingMatch() match.Match {
	item := scheduledMatch()
	started := testNow.Add(-time.Minute)
	item.Analysis.AIStatus = match.AIStatusProcessing
	item.Analysis.AIAnalysis.Status = match.GenerationGenerating
	item.Analysis.TriggeredBy = testAdminID
	item.Analysis.DispatchID = testDispatchID
	item.Analysis.StartedAt = &started
	return item
}

func generatedMatch() match.Match {
	item := processingMatch()
	next, err := item.Analysis.Complete(validResult(), testNow.Add(-time.Hour))
	if err != nil {
		panic(err)
	}
	item.Analysis = next
	return item
}

func validResult() match.Result {
	home, away := 2, 1
	return match.Result{
		Articles: []match.SourceArticle{
			{Title: "Persija ready for derby", URL: "https://news.test/persija", Source: "news.test"},
		},
		Content:        "Persija are favourites at home.",
		PredictedScore: &match.PredictedScore{Home: &home, Away: &away},
	}
}

func adminPrincipal() user.Principal {
	return user.Principal{UserID: testAdminID, Username: "admin", Role: user.RoleAdmin}
}

func TestAnalysisService_TriggerAnalysis_DispatchesAndRecordsLedger(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})
	ctx := context.Background()

	f.matches.On("GetByID", mock.Anything, testMatchID).Return(scheduledMatch(), true, nil).Once()
	f.matches.
		On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusNotGenerated, mock.MatchedBy(func(next match.Analysis) bool {
			return next.AIStatus == match.AIStatusProcessing &&
				next.AIAnalysis.Status == match.GenerationGenerating &&
				next.DispatchID == testDispatchID &&
				next.TriggeredBy == testAdminID
		})).
		Return(true, nil).
		Once()
	f.users.On("IncrementTasks", mock.Anything, testAdminID, 1, 0).Return(nil).Once()
	f.leagues.On("GetByID", mock.Anything, testLeagueID).Return(league.League{ID: testLeagueID, Name: "Liga 1 Indonesia"}, true, nil).Once()
	f.dispatcher.
		On("Dispatch", mock.Anything, mock.MatchedBy(func(job workflow.Job) bool {
			return job.MatchID == testMatchID &&
				job.DispatchID == testDispatchID &&
				job.LeagueName == "Liga 1 Indonesia" &&
				job.CallbackURL == "https://api.matchday.test/v1/matches/"+testMatchID+"/analysis-callback" &&
				job.FailureCallbackURL == "https://api.matchday.test/v1/matches/"+testMatchID+"/analysis-callback/failure"
		})).
		Return(workflow.Receipt{DispatchID: testDispatchID, Mode: workflow.ModeWebhook, StatusCode: 202}, nil).
		Once()
	f.ledger.
		On("UpsertEvent", mock.Anything, mock.MatchedBy(func(event workflow.DispatchEvent) bool {
			return event.DispatchID == testDispatchID && event.Status == workflow.StatusSent && event.OccurredAt.Equal(testNow)
		})).
		Return(nil).
		Once()

	got, err := f.service.TriggerAnalysis(ctx, adminPrincipal(), testMatchID)
	if err != nil {
		t.Fatalf("trigger analysis: %v", err)
	}
	if got.Match.Analysis.AIStatus != match.AIStatusProcessing {
		t.Fatalf("unexpected ai status: got=%s want=%s", got.Match.Analysis.AIStatus, match.AIStatusProcessing)
	}
	if got.Dispatch.Status != workflow.StatusSent {
		t.Fatalf("unexpected dispatch status: got=%s want=%s", got.Dispatch.Status, workflow.StatusSent)
	}
	if got.Dispatch.DispatchID != testDispatchID {
		t.Fatalf("unexpected dispatch id: got=%s", got.Dispatch.DispatchID)
	}
}

func TestAnalysisService_TriggerAnalysis_DispatchFailureKeepsProcessing(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})

	f.matches.On("GetByID", mock.Anything, testMatchID).Return(scheduledMatch(), true, nil).Once()
	f.matches.On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusNotGenerated, mock.Anything).Return(true, nil).Once()
	f.users.On("IncrementTasks", mock.Anything, testAdminID, 1, 0).Return(nil).Once()
	f.leagues.On("GetByID", mock.Anything, testLeagueID).Return(league.League{}, false, nil).Once()
	f.dispatcher.
		On("Dispatch", mock.Anything, mock.Anything).
		Return(workflow.Receipt{Mode: workflow.ModeWebhook}, errors.New("workflow returned 502")).
		Once()
	f.ledger.
		On("UpsertEvent", mock.Anything, mock.MatchedBy(func(event workflow.DispatchEvent) bool {
			return event.Status == workflow.StatusFailed && event.ErrorMessage == "workflow returned 502"
		})).
		Return(nil).
		Once()

	got, err := f.service.TriggerAnalysis(context.Background(), adminPrincipal(), testMatchID)
	if err != nil {
		t.Fatalf("dispatch failure must not fail the trigger: %v", err)
	}
	if got.Match.Analysis.AIStatus != match.AIStatusProcessing {
		t.Fatalf("expected match to stay processing, got %s", got.Match.Analysis.AIStatus)
	}
	if got.Dispatch.Status != workflow.StatusFailed || got.Dispatch.Error == "" {
		t.Fatalf("expected failed dispatch outcome, got %+v", got.Dispatch)
	}
}

func TestAnalysisService_TriggerAnalysis_RejectsBusyOrFinishedMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		item    match.Match
		wantErr error
	}{
		{name: "processing", item: processingMatch(), wantErr: match.ErrAnalysisInProgress},
		{name: "generated", item: generatedMatch(), wantErr: match.ErrAnalysisGenerated},
		{name: "not scheduled", item: func() match.Match {
			item := scheduledMatch()
			item.Status = match.StatusFinished
			return item
		}(), wantErr: match.ErrMatchNotScheduled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newAnalysisFixture(t, AnalysisConfig{})
			f.matches.On("GetByID", mock.Anything, testMatchID).Return(tc.item, true, nil).Once()

			_, err := f.service.TriggerAnalysis(context.Background(), adminPrincipal(), testMatchID)
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("expected ErrConflict, got %v", err)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAnalysisService_TriggerAnalysis_LostRaceReportsLatestState(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})

	f.matches.On("GetByID", mock.Anything, testMatchID).Return(scheduledMatch(), true, nil).Once()
	f.matches.On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusNotGenerated, mock.Anything).Return(false, nil).Once()
	f.matches.On("GetByID", mock.Anything, testMatchID).Return(processingMatch(), true, nil).Once()

	_, err := f.service.TriggerAnalysis(context.Background(), adminPrincipal(), testMatchID)
	if !errors.Is(err, match.ErrAnalysisInProgress) {
		t.Fatalf("expected ErrAnalysisInProgress, got %v", err)
	}
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestAnalysisService_TriggerAnalysis_ValidatesCallerAndID(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})
	ctx := context.Background()

	if _, err := f.service.TriggerAnalysis(ctx, user.Principal{}, testMatchID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.service.TriggerAnalysis(ctx, user.Principal{UserID: "x", Role: "viewer"}, testMatchID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.service.TriggerAnalysis(ctx, adminPrincipal(), "not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	f.matches.On("GetByID", mock.Anything, testMatchID).Return(match.Match{}, false, nil).Once()
	if _, err := f.service.TriggerAnalysis(ctx, adminPrincipal(), testMatchID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalysisService_CompleteAnalysis_StoresResult(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})

	f.matches.On("GetByID", mock.Anything, testMatchID).Return(processingMatch(), true, nil).Once()
	f.matches.
		On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusProcessing, mock.MatchedBy(func(next match.Analysis) bool {
			return next.AIStatus == match.AIStatusGenerated && next.IsAnalyzed && len(next.Articles) == 1
		})).
		Return(true, nil).
		Once()
	f.ledger.
		On("UpsertEvent", mock.Anything, mock.MatchedBy(func(event workflow.DispatchEvent) bool {
			return event.Status == workflow.StatusCompleted && event.DispatchID == testDispatchID
		})).
		Return(nil).
		Once()
	f.users.On("IncrementTasks", mock.Anything, testAdminID, 0, 1).Return(nil).Once()

	got, err := f.service.CompleteAnalysis(context.Background(), testMatchID, validResult())
	if err != nil {
		t.Fatalf("complete analysis: %v", err)
	}
	if !got.Analysis.IsAnalyzed || got.Analysis.AIStatus != match.AIStatusGenerated {
		t.Fatalf("unexpected analysis state: %+v", got.Analysis)
	}
	score := got.Analysis.AIAnalysis.PredictedScore
	if score == nil || score.Home != 2 || score.Away != 1 {
		t.Fatalf("unexpected predicted score: %+v", score)
	}
	if len(f.articles.calls) != 1 || f.articles.calls[0] != testMatchID {
		t.Fatalf("expected one article sync for match, got %v", f.articles.calls)
	}
}

func TestAnalysisService_CompleteAnalysis_ReplayOnGeneratedIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})
	current := generatedMatch()

	f.matches.On("GetByID", mock.Anything, testMatchID).Return(current, true, nil).Once()
	f.matches.
		On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusGenerated, mock.MatchedBy(func(next match.Analysis) bool {
			return len(next.Articles) == len(current.Analysis.Articles) && next.AIAnalysis.Content == current.Analysis.AIAnalysis.Content
		})).
		Return(true, nil).
		Once()

	got, err := f.service.CompleteAnalysis(context.Background(), testMatchID, validResult())
	if err != nil {
		t.Fatalf("replay callback: %v", err)
	}
	if len(got.Analysis.Articles) != 1 {
		t.Fatalf("articles must be replaced, not appended: got=%d", len(got.Analysis.Articles))
	}
	f.users.AssertNotCalled(t, "IncrementTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "UpsertEvent", mock.Anything, mock.Anything)
}

func TestAnalysisService_CompleteAnalysis_RequireProcessingRejectsReplay(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{RequireProcessingOnCallback: true})
	f.matches.On("GetByID", mock.Anything, testMatchID).Return(generatedMatch(), true, nil).Once()

	_, err := f.service.CompleteAnalysis(context.Background(), testMatchID, validResult())
	if !errors.Is(err, ErrConflict) || !errors.Is(err, match.ErrAnalysisNotProcessing) {
		t.Fatalf("expected not processing conflict, got %v", err)
	}
}

func TestAnalysisService_CompleteAnalysis_RetriesLostSwap(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})

	f.matches.On("GetByID", mock.Anything, testMatchID).Return(processingMatch(), true, nil).Twice()
	f.matches.On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusProcessing, mock.Anything).Return(false, nil).Once()
	f.matches.On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusProcessing, mock.Anything).Return(true, nil).Once()
	f.ledger.On("UpsertEvent", mock.Anything, mock.Anything).Return(nil).Once()
	f.users.On("IncrementTasks", mock.Anything, testAdminID, 0, 1).Return(nil).Once()

	if _, err := f.service.CompleteAnalysis(context.Background(), testMatchID, validResult()); err != nil {
		t.Fatalf("complete analysis after retry: %v", err)
	}
}

func TestAnalysisService_CompleteAnalysis_RejectsInvalidResult(t *testing.T) {
	t.Parallel()

	f := newAnalysisFixture(t, AnalysisConfig{})

	tests := []struct {
		name   string
		result match.Result
	}{
		{name: "no articles", result: match.Result{Content: "text"}},
		{name: "no content", result: match.Result{Articles: validResult().Articles}},
		{name: "article without url", result: match.Result{
			Articles: []match.SourceArticle{{Title: "a", Source: "b"}},
			Content:  "text",
		}},
	}
	for _, tc := range tests {
		if _, err := f.service.CompleteAnalysis(context.Background(), testMatchID, tc.result); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestAnalysisService_FailAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("processing returns to not generated", func(t *testing.T) {
		t.Parallel()

		f := newAnalysisFixture(t, AnalysisConfig{})
		f.matches.On("GetByID", mock.Anything, testMatchID).Return(processingMatch(), true, nil).Once()
		f.matches.
			On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusProcessing, mock.MatchedBy(func(next match.Analysis) bool {
				return next.AIStatus == match.AIStatusNotGenerated && next.AIAnalysis.Status == match.GenerationFailed
			})).
			Return(true, nil).
			Once()
		f.ledger.
			On("UpsertEvent", mock.Anything, mock.MatchedBy(func(event workflow.DispatchEvent) bool {
				return event.Status == workflow.StatusFailed && event.ErrorMessage == "scraper timed out"
			})).
			Return(nil).
			Once()

		got, err := f.service.FailAnalysis(context.Background(), testMatchID, testDispatchID, "  scraper timed out ")
		if err != nil {
			t.Fatalf("fail analysis: %v", err)
		}
		if got.Analysis.AIAnalysis.FailureReason != "scraper timed out" {
			t.Fatalf("unexpected failure reason: %q", got.Analysis.AIAnalysis.FailureReason)
		}
	})

	t.Run("idle match is a conflict", func(t *testing.T) {
		t.Parallel()

		f := newAnalysisFixture(t, AnalysisConfig{})
		f.matches.On("GetByID", mock.Anything, testMatchID).Return(scheduledMatch(), true, nil).Once()

		_, err := f.service.FailAnalysis(context.Background(), testMatchID, "", "boom")
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("report from an earlier dispatch is refused", func(t *testing.T) {
		t.Parallel()

		f := newAnalysisFixture(t, AnalysisConfig{})
		f.matches.On("GetByID", mock.Anything, testMatchID).Return(processingMatch(), true, nil).Once()

		_, err := f.service.FailAnalysis(context.Background(), testMatchID, "0194f3a0-0000-7000-8000-00000000dead", "late timeout")
		if !errors.Is(err, ErrConflict) || !errors.Is(err, match.ErrDispatchMismatch) {
			t.Fatalf("expected dispatch mismatch conflict, got %v", err)
		}
		f.matches.AssertNotCalled(t, "CompareAndSwapAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAnalysisService_ResetAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("ktv cannot reset", func(t *testing.T) {
		t.Parallel()

		f := newAnalysisFixture(t, AnalysisConfig{})
		_, err := f.service.ResetAnalysis(context.Background(), user.Principal{UserID: "u", Role: user.RoleKTV}, testMatchID)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("admin releases processing match", func(t *testing.T) {
		t.Parallel()

		f := newAnalysisFixture(t, AnalysisConfig{})
		f.matches.On("GetByID", mock.Anything, testMatchID).Return(processingMatch(), true, nil).Once()
		f.matches.
			On("CompareAndSwapAnalysis", mock.Anything, testMatchID, match.AIStatusProcessing, mock.MatchedBy(func(next match.Analysis) bool {
				return next.AIStatus == match.AIStatusNotGenerated && next.StartedAt == nil
			})).
			Return(true, nil).
			Once()

		got, err := f.service.ResetAnalysis(context.Background(), adminPrincipal(), testMatchID)
		if err != nil {
			t.Fatalf("reset analysis: %v", err)
		}
		if got.Analysis.AIStatus != match.AIStatusNotGenerated {
			t.Fatalf("unexpected ai status after reset: %s", got.Analysis.AIStatus)
		}
	})

	t.Run("generated match cannot be reset", func(t *testing.T) {
		t.Parallel()

		f := newAnalysisFixture(t, AnalysisConfig{})
		f.matches.On("GetByID", mock.Anything, testMatchID).Return(generatedMatch(), true, nil).Once()

		_, err := f.service.ResetAnalysis(context.Background(), adminPrincipal(), testMatchID)
		if !errors.Is(err, match.ErrAnalysisGenerated) {
			t.Fatalf("expected ErrAnalysisGenerated, got %v", err)
		}
	})
}

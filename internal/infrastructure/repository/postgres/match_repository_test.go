package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var matchColumns = []string{
	"id", "public_id", "league_public_id",
	"home_team_name", "home_team_logo", "home_score",
	"away_team_name", "away_team_logo", "away_score",
	"match_date", "venue", "status", "round",
	"ai_status", "is_analyzed", "publish_status", "published_at", "ai_generated_at",
	"analysis", "created_at", "updated_at", "deleted_at",
}

func TestMatchRepository_CompareAndSwapAnalysis(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	next, err := match.NewAnalysis().Start("u1", "d1", now)
	if err != nil {
		t.Fatalf("start analysis: %v", err)
	}

	pattern := regexp.QuoteMeta("UPDATE matches SET analysis = $1::jsonb, ai_status = $2") +
		".*" + regexp.QuoteMeta("WHERE public_id = $7 AND ai_status = $8 AND deleted_at IS NULL")

	mock.ExpectExec(pattern).
		WithArgs(sqlmock.AnyArg(), "processing", false, nil, nil, nil, "m1", "not_generated").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pattern).
		WithArgs(sqlmock.AnyArg(), "processing", false, nil, nil, nil, "m1", "not_generated").
		WillReturnResult(sqlmock.NewResult(0, 0))

	swapped, err := repo.CompareAndSwapAnalysis(context.Background(), "m1", match.AIStatusNotGenerated, next)
	if err != nil {
		t.Fatalf("first swap: %v", err)
	}
	if !swapped {
		t.Fatalf("expected first swap to apply")
	}

	swapped, err = repo.CompareAndSwapAnalysis(context.Background(), "m1", match.AIStatusNotGenerated, next)
	if err != nil {
		t.Fatalf("second swap: %v", err)
	}
	if swapped {
		t.Fatalf("expected second swap to miss")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMatchRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	matchDate := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	analysis := `{"isAnalyzed":true,"aiStatus":"generated","articles":[{"title":"Preview","url":"https://example.com/a","source":"Example","fetchedAt":"2026-03-01T10:00:00Z"}],"aiAnalysis":{"content":"Tight game","status":"generated","predictedScore":{"home":2,"away":1}}}`

	query := regexp.QuoteMeta("SELECT * FROM matches WHERE public_id = $1 AND deleted_at IS NULL")
	mock.ExpectQuery(query).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows(matchColumns).AddRow(
			int64(1), "m1", "l1",
			"Persija Jakarta", nil, nil,
			"Persib Bandung", nil, nil,
			matchDate, "GBK", "scheduled", "Week 1",
			"generated", true, nil, nil, nil,
			analysis, matchDate, matchDate, nil,
		))
	mock.ExpectQuery(query).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(matchColumns))

	got, ok, err := repo.GetByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !ok {
		t.Fatalf("expected match to be found")
	}
	if got.HomeTeam.Name != "Persija Jakarta" || got.Venue != "GBK" {
		t.Fatalf("unexpected fixture fields: %+v", got)
	}
	if got.Analysis.AIStatus != match.AIStatusGenerated || !got.Analysis.IsAnalyzed {
		t.Fatalf("unexpected analysis state: %+v", got.Analysis)
	}
	if len(got.Analysis.Articles) != 1 || got.Analysis.Articles[0].Source != "Example" {
		t.Fatalf("unexpected articles: %+v", got.Analysis.Articles)
	}
	if score := got.Analysis.AIAnalysis.PredictedScore; score == nil || score.Home != 2 || score.Away != 1 {
		t.Fatalf("unexpected predicted score: %+v", score)
	}

	_, ok, err = repo.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get missing match: %v", err)
	}
	if ok {
		t.Fatalf("expected missing match not to be found")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEncodeDecodeAnalysis_KeepsPublication(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	a, err := match.NewAnalysis().Start("u1", "d1", now)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	home, away := 1, 1
	a, err = a.Complete(match.Result{
		Articles:       []match.SourceArticle{{Title: "t", URL: "https://example.com", Source: "s"}},
		Content:        "analysis",
		PredictedScore: &match.PredictedScore{Home: &home, Away: &away},
	}, now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	a, err = a.Publish(match.WordpressPost{PostID: "42", Status: match.PublishPublished}, now)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	cols, err := analysisColumnsFrom(a)
	if err != nil {
		t.Fatalf("analysis columns: %v", err)
	}
	if cols.publishStatus == nil || *cols.publishStatus != "published" {
		t.Fatalf("expected publish status column, got %v", cols.publishStatus)
	}
	if cols.publishedAt == nil || !cols.publishedAt.Equal(now) {
		t.Fatalf("expected published_at column, got %v", cols.publishedAt)
	}

	decoded, err := decodeAnalysis(cols.document)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.WordpressPost.PostID != "42" || decoded.WordpressPost.Status != match.PublishPublished {
		t.Fatalf("unexpected wordpress post: %+v", decoded.WordpressPost)
	}
	if !decoded.Consistent() {
		t.Fatalf("expected decoded analysis to be consistent: %+v", decoded)
	}
}

package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday-preview/internal/domain/article"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
)

type articleTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	MatchPublicID  string         `db:"match_public_id"`
	LeaguePublicID string         `db:"league_public_id"`
	LeagueName     string         `db:"league_name"`
	HomeTeam       string         `db:"home_team"`
	AwayTeam       string         `db:"away_team"`
	HomeLogo       sql.NullString `db:"home_logo"`
	AwayLogo       sql.NullString `db:"away_logo"`
	MatchDate      time.Time      `db:"match_date"`
	Venue          sql.NullString `db:"venue"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	Sources        string         `db:"sources"`
	PredictedHome  sql.NullInt64  `db:"predicted_home"`
	PredictedAway  sql.NullInt64  `db:"predicted_away"`
	GeneratedAt    time.Time      `db:"generated_at"`
	PublishedAt    *time.Time     `db:"published_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type articleInsertModel struct {
	PublicID       string        `db:"public_id"`
	MatchPublicID  string        `db:"match_public_id"`
	LeaguePublicID string        `db:"league_public_id"`
	LeagueName     string        `db:"league_name"`
	HomeTeam       string        `db:"home_team"`
	AwayTeam       string        `db:"away_team"`
	HomeLogo       *string       `db:"home_logo"`
	AwayLogo       *string       `db:"away_logo"`
	MatchDate      time.Time     `db:"match_date"`
	Venue          *string       `db:"venue"`
	Title          string        `db:"title"`
	Content        string        `db:"content"`
	Sources        string        `db:"sources"`
	PredictedHome  sql.NullInt64 `db:"predicted_home"`
	PredictedAway  sql.NullInt64 `db:"predicted_away"`
	GeneratedAt    time.Time     `db:"generated_at"`
	PublishedAt    *time.Time    `db:"published_at"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func articleInsertFrom(item article.Article) (articleInsertModel, error) {
	sources := make([]sourceArticleDoc, 0, len(item.Sources))
	for _, s := range item.Sources {
		sources = append(sources, sourceArticleDoc{
			Title:     s.Title,
			URL:       s.URL,
			Source:    s.Source,
			Content:   s.Content,
			FetchedAt: s.FetchedAt.UTC(),
		})
	}
	raw, err := sonic.Marshal(sources)
	if err != nil {
		return articleInsertModel{}, fmt.Errorf("marshal article sources: %w", err)
	}

	model := articleInsertModel{
		PublicID:       item.ID,
		MatchPublicID:  item.MatchID,
		LeaguePublicID: item.LeagueID,
		LeagueName:     item.LeagueName,
		HomeTeam:       item.HomeTeam,
		AwayTeam:       item.AwayTeam,
		HomeLogo:       optionalString(item.HomeLogo),
		AwayLogo:       optionalString(item.AwayLogo),
		MatchDate:      item.MatchDate.UTC(),
		Venue:          optionalString(item.Venue),
		Title:          item.Title,
		Content:        item.Content,
		Sources:        string(raw),
		GeneratedAt:    item.GeneratedAt.UTC(),
		PublishedAt:    timePtrUTC(item.PublishedAt),
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	if item.PredictedScore != nil {
		model.PredictedHome = sql.NullInt64{Int64: int64(item.PredictedScore.Home), Valid: true}
		model.PredictedAway = sql.NullInt64{Int64: int64(item.PredictedScore.Away), Valid: true}
	}
	return model, nil
}

func articleFromRow(row articleTableModel) (article.Article, error) {
	var docs []sourceArticleDoc
	if row.Sources != "" {
		if err := sonic.UnmarshalString(row.Sources, &docs); err != nil {
			return article.Article{}, fmt.Errorf("unmarshal article %s sources: %w", row.PublicID, err)
		}
	}
	sources := make([]match.SourceArticle, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, match.SourceArticle{
			Title:     d.Title,
			URL:       d.URL,
			Source:    d.Source,
			Content:   d.Content,
			FetchedAt: d.FetchedAt,
		})
	}

	out := article.Article{
		ID:          row.PublicID,
		MatchID:     row.MatchPublicID,
		LeagueID:    row.LeaguePublicID,
		LeagueName:  row.LeagueName,
		HomeTeam:    row.HomeTeam,
		AwayTeam:    row.AwayTeam,
		HomeLogo:    stringFromNull(row.HomeLogo),
		AwayLogo:    stringFromNull(row.AwayLogo),
		MatchDate:   row.MatchDate,
		Venue:       stringFromNull(row.Venue),
		Title:       row.Title,
		Content:     row.Content,
		Sources:     sources,
		GeneratedAt: row.GeneratedAt,
		PublishedAt: row.PublishedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.PredictedHome.Valid && row.PredictedAway.Valid {
		out.PredictedScore = &match.Score{
			Home: int(row.PredictedHome.Int64),
			Away: int(row.PredictedAway.Int64),
		}
	}
	return out, nil
}

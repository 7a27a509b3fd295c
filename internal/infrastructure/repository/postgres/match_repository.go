package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	qb "github.com/riskibarqy/matchday-preview/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(matchConditions(filter)...).
		OrderBy("match_date DESC", "id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}
	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) Count(ctx context.Context, filter match.Filter) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("matches").
		Where(matchConditions(filter)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count matches query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	item, err := matchFromRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	cols, err := analysisColumnsFrom(item.Analysis)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("matches", matchInsertModel{
		PublicID:      item.ID,
		LeaguePublic:  item.LeagueID,
		HomeTeamName:  item.HomeTeam.Name,
		HomeTeamLogo:  optionalString(item.HomeTeam.Logo),
		HomeScore:     nullInt64FromPtr(item.HomeTeam.Score),
		AwayTeamName:  item.AwayTeam.Name,
		AwayTeamLogo:  optionalString(item.AwayTeam.Logo),
		AwayScore:     nullInt64FromPtr(item.AwayTeam.Score),
		MatchDate:     item.MatchDate.UTC(),
		Venue:         optionalString(item.Venue),
		Status:        string(item.Status),
		Round:         optionalString(item.Round),
		AIStatus:      cols.aiStatus,
		IsAnalyzed:    cols.isAnalyzed,
		PublishStatus: cols.publishStatus,
		PublishedAt:   cols.publishedAt,
		AIGeneratedAt: cols.aiGeneratedAt,
		Analysis:      cols.document,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// Update writes fixture columns only. Analysis changes go through
// CompareAndSwapAnalysis.
func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	query, args, err := qb.Update("matches").
		Set("league_public_id", item.LeagueID).
		Set("home_team_name", item.HomeTeam.Name).
		Set("home_team_logo", optionalString(item.HomeTeam.Logo)).
		Set("home_score", nullInt64FromPtr(item.HomeTeam.Score)).
		Set("away_team_name", item.AwayTeam.Name).
		Set("away_team_logo", optionalString(item.AwayTeam.Logo)).
		Set("away_score", nullInt64FromPtr(item.AwayTeam.Score)).
		Set("match_date", item.MatchDate.UTC()).
		Set("venue", optionalString(item.Venue)).
		Set("status", string(item.Status)).
		Set("round", optionalString(item.Round)).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("public_id", item.ID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	query, args, err := qb.Update("matches").
		SetExpr("deleted_at", "NOW()").
		Where(qb.Eq("public_id", matchID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

func (r *MatchRepository) CompareAndSwapAnalysis(ctx context.Context, matchID string, expected match.AIStatus, next match.Analysis) (bool, error) {
	cols, err := analysisColumnsFrom(next)
	if err != nil {
		return false, err
	}

	query, args, err := qb.Update("matches").
		SetExpr("analysis", "?::jsonb", cols.document).
		Set("ai_status", cols.aiStatus).
		Set("is_analyzed", cols.isAnalyzed).
		Set("publish_status", cols.publishStatus).
		Set("published_at", cols.publishedAt).
		Set("ai_generated_at", cols.aiGeneratedAt).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", matchID),
			qb.Eq("ai_status", string(expected)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build swap analysis query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("swap analysis match=%s expected=%s: %w", matchID, expected, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap analysis rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *MatchRepository) ListRecent(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.IsNull("deleted_at")).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build recent matches query: %w", err)
	}
	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) ListRecentlyPublished(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.IsNull("deleted_at"), qb.Eq("is_analyzed", true)).
		OrderBy("COALESCE(published_at, ai_generated_at) DESC NULLS LAST", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build recently published matches query: %w", err)
	}
	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) selectMatches(ctx context.Context, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func matchConditions(filter match.Filter) []qb.Condition {
	conds := []qb.Condition{qb.IsNull("deleted_at")}
	if filter.LeagueID != "" {
		conds = append(conds, qb.Eq("league_public_id", filter.LeagueID))
	}
	if filter.Status != "" {
		conds = append(conds, qb.Eq("status", string(filter.Status)))
	}
	if filter.AIStatus != "" {
		conds = append(conds, qb.Eq("ai_status", string(filter.AIStatus)))
	}
	if filter.IsAnalyzed != nil {
		conds = append(conds, qb.Eq("is_analyzed", *filter.IsAnalyzed))
	}
	if filter.PublishStatus != "" {
		conds = append(conds, qb.Eq("publish_status", string(filter.PublishStatus)))
	}
	if filter.Search != "" {
		conds = append(conds, qb.Search(filter.Search, "home_team_name", "away_team_name", "venue"))
	}
	if filter.From != nil {
		conds = append(conds, qb.Gte("match_date", filter.From.UTC()))
	}
	if filter.To != nil {
		conds = append(conds, qb.Lte("match_date", filter.To.UTC()))
	}
	return conds
}

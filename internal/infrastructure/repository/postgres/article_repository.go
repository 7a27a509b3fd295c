package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-preview/internal/domain/article"
	qb "github.com/riskibarqy/matchday-preview/internal/platform/querybuilder"
)

type ArticleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) List(ctx context.Context, filter article.Filter) ([]article.Article, error) {
	query, args, err := qb.Select("*").From("articles").
		Where(articleConditions(filter)...).
		OrderBy("COALESCE(published_at, generated_at) DESC", "id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select articles query: %w", err)
	}

	var rows []articleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}

	out := make([]article.Article, 0, len(rows))
	for _, row := range rows {
		item, err := articleFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *ArticleRepository) Count(ctx context.Context, filter article.Filter) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("articles").
		Where(articleConditions(filter)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count articles query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, articleID string) (article.Article, bool, error) {
	return r.getOne(ctx, "get article by id", qb.Eq("public_id", articleID))
}

func (r *ArticleRepository) GetByMatchID(ctx context.Context, matchID string) (article.Article, bool, error) {
	return r.getOne(ctx, "get article by match id", qb.Eq("match_public_id", matchID))
}

func (r *ArticleRepository) getOne(ctx context.Context, op string, cond qb.Condition) (article.Article, bool, error) {
	query, args, err := qb.Select("*").From("articles").Where(cond).ToSQL()
	if err != nil {
		return article.Article{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row articleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return article.Article{}, false, nil
		}
		return article.Article{}, false, fmt.Errorf("%s: %w", op, err)
	}

	item, err := articleFromRow(row)
	if err != nil {
		return article.Article{}, false, err
	}
	return item, true, nil
}

// Upsert keeps one article per match. The public id and creation time of an
// existing row survive a resync.
func (r *ArticleRepository) Upsert(ctx context.Context, item article.Article) error {
	model, err := articleInsertFrom(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("articles", model, `ON CONFLICT (match_public_id)
DO UPDATE SET
    league_public_id = EXCLUDED.league_public_id,
    league_name = EXCLUDED.league_name,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    home_logo = EXCLUDED.home_logo,
    away_logo = EXCLUDED.away_logo,
    match_date = EXCLUDED.match_date,
    venue = EXCLUDED.venue,
    title = EXCLUDED.title,
    content = EXCLUDED.content,
    sources = EXCLUDED.sources,
    predicted_home = EXCLUDED.predicted_home,
    predicted_away = EXCLUDED.predicted_away,
    generated_at = EXCLUDED.generated_at,
    published_at = EXCLUDED.published_at,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert article query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article match=%s: %w", item.MatchID, err)
	}
	return nil
}

func articleConditions(filter article.Filter) []qb.Condition {
	conds := make([]qb.Condition, 0, 2)
	if filter.LeagueID != "" {
		conds = append(conds, qb.Eq("league_public_id", filter.LeagueID))
	}
	if filter.Search != "" {
		conds = append(conds, qb.Search(filter.Search, "title", "home_team", "away_team"))
	}
	return conds
}

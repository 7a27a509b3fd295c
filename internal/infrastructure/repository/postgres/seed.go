package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-preview/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo leagues, fixtures and admin account into an
// empty database. It is a no-op once any league exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, adminPasswordHash string, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedLeagues() {
		if err := execNamed(ctx, tx, `
INSERT INTO leagues (public_id, name, country, season, status)
VALUES (:public_id, :name, :country, :season, :status)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id": l.ID,
			"name":      l.Name,
			"country":   l.Country,
			"season":    l.Season,
			"status":    string(l.Status),
		}); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}

	for _, m := range memory.SeedMatches(now) {
		doc, err := encodeAnalysis(m.Analysis)
		if err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
		if err := execNamed(ctx, tx, `
INSERT INTO matches (public_id, league_public_id, home_team_name, away_team_name, match_date, venue, status, round, ai_status, is_analyzed, analysis)
VALUES (:public_id, :league_public_id, :home_team_name, :away_team_name, :match_date, :venue, :status, :round, :ai_status, FALSE, CAST(:analysis AS JSONB))
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":        m.ID,
			"league_public_id": m.LeagueID,
			"home_team_name":   m.HomeTeam.Name,
			"away_team_name":   m.AwayTeam.Name,
			"match_date":       m.MatchDate.UTC(),
			"venue":            m.Venue,
			"status":           string(m.Status),
			"round":            m.Round,
			"ai_status":        string(m.Analysis.AIStatus),
			"analysis":         doc,
		}); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	if adminPasswordHash != "" {
		for _, u := range memory.SeedUsers(adminPasswordHash) {
			if err := execNamed(ctx, tx, `
INSERT INTO users (public_id, username, email, full_name, password_hash, role, status)
VALUES (:public_id, :username, :email, :full_name, :password_hash, :role, :status)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
				"public_id":     u.ID,
				"username":      u.Username,
				"email":         u.Email,
				"full_name":     u.FullName,
				"password_hash": u.PasswordHash,
				"role":          string(u.Role),
				"status":        string(u.Status),
			}); err != nil {
				return fmt.Errorf("seed user %s: %w", u.Username, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func execNamed(ctx context.Context, tx *sqlx.Tx, query string, arg map[string]any) error {
	sqlQuery, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind query: %w", err)
	}
	sqlQuery = tx.Rebind(sqlQuery)
	if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
		return err
	}
	return nil
}

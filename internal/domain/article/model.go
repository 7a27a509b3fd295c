package article

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
)

// Article is a denormalised, read-only copy of a finished match analysis.
// The match record stays the source of truth for analysis state.
type Article struct {
	ID             string
	MatchID        string
	LeagueID       string
	LeagueName     string
	HomeTeam       string
	AwayTeam       string
	HomeLogo       string
	AwayLogo       string
	MatchDate      time.Time
	Venue          string
	Title          string
	Content        string
	Sources        []match.SourceArticle
	PredictedScore *match.Score
	GeneratedAt    time.Time
	PublishedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var ErrMatchNotGenerated = match.ErrAnalysisNotGenerated

// FromMatch projects a generated match into an article. id is kept when the
// article already exists so repeated syncs update in place.
func FromMatch(id string, m match.Match, l league.League, now time.Time) (Article, error) {
	if m.Analysis.AIStatus != match.AIStatusGenerated || !m.Analysis.Consistent() {
		return Article{}, fmt.Errorf("%w: match %s", ErrMatchNotGenerated, m.ID)
	}

	generatedAt := now.UTC()
	if m.Analysis.AIAnalysis.GeneratedAt != nil {
		generatedAt = *m.Analysis.AIAnalysis.GeneratedAt
	}

	var predicted *match.Score
	if m.Analysis.AIAnalysis.PredictedScore != nil {
		score := *m.Analysis.AIAnalysis.PredictedScore
		predicted = &score
	}

	var publishedAt *time.Time
	if m.Analysis.WordpressPost.Status == match.PublishPublished && m.Analysis.WordpressPost.PublishedAt != nil {
		at := *m.Analysis.WordpressPost.PublishedAt
		publishedAt = &at
	}

	return Article{
		ID:             id,
		MatchID:        m.ID,
		LeagueID:       m.LeagueID,
		LeagueName:     l.Name,
		HomeTeam:       m.HomeTeam.Name,
		AwayTeam:       m.AwayTeam.Name,
		HomeLogo:       m.HomeTeam.Logo,
		AwayLogo:       m.AwayTeam.Logo,
		MatchDate:      m.MatchDate,
		Venue:          m.Venue,
		Title:          Title(m),
		Content:        m.Analysis.AIAnalysis.Content,
		Sources:        append([]match.SourceArticle(nil), m.Analysis.Articles...),
		PredictedScore: predicted,
		GeneratedAt:    generatedAt,
		PublishedAt:    publishedAt,
	}, nil
}

// Title builds the headline used for a match preview.
func Title(m match.Match) string {
	parts := []string{"Preview:", strings.TrimSpace(m.HomeTeam.Name), "vs", strings.TrimSpace(m.AwayTeam.Name)}
	if round := strings.TrimSpace(m.Round); round != "" {
		parts = append(parts, "("+round+")")
	}
	return strings.Join(parts, " ")
}

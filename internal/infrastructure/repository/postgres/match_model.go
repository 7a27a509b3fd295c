package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
)

type matchTableModel struct {
	ID            int64          `db:"id"`
	PublicID      string         `db:"public_id"`
	LeaguePublic  string         `db:"league_public_id"`
	HomeTeamName  string         `db:"home_team_name"`
	HomeTeamLogo  sql.NullString `db:"home_team_logo"`
	HomeScore     sql.NullInt64  `db:"home_score"`
	AwayTeamName  string         `db:"away_team_name"`
	AwayTeamLogo  sql.NullString `db:"away_team_logo"`
	AwayScore     sql.NullInt64  `db:"away_score"`
	MatchDate     time.Time      `db:"match_date"`
	Venue         sql.NullString `db:"venue"`
	Status        string         `db:"status"`
	Round         sql.NullString `db:"round"`
	AIStatus      string         `db:"ai_status"`
	IsAnalyzed    bool           `db:"is_analyzed"`
	PublishStatus sql.NullString `db:"publish_status"`
	PublishedAt   *time.Time     `db:"published_at"`
	AIGeneratedAt *time.Time     `db:"ai_generated_at"`
	Analysis      string         `db:"analysis"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	DeletedAt     *time.Time     `db:"deleted_at"`
}

type matchInsertModel struct {
	PublicID      string        `db:"public_id"`
	LeaguePublic  string        `db:"league_public_id"`
	HomeTeamName  string        `db:"home_team_name"`
	HomeTeamLogo  *string       `db:"home_team_logo"`
	HomeScore     sql.NullInt64 `db:"home_score"`
	AwayTeamName  string        `db:"away_team_name"`
	AwayTeamLogo  *string       `db:"away_team_logo"`
	AwayScore     sql.NullInt64 `db:"away_score"`
	MatchDate     time.Time     `db:"match_date"`
	Venue         *string       `db:"venue"`
	Status        string        `db:"status"`
	Round         *string       `db:"round"`
	AIStatus      string        `db:"ai_status"`
	IsAnalyzed    bool          `db:"is_analyzed"`
	PublishStatus *string       `db:"publish_status"`
	PublishedAt   *time.Time    `db:"published_at"`
	AIGeneratedAt *time.Time    `db:"ai_generated_at"`
	Analysis      string        `db:"analysis"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// analysisDocument is the JSONB shape of the analysis column.
type analysisDocument struct {
	IsAnalyzed    bool                   `json:"isAnalyzed"`
	AIStatus      string                 `json:"aiStatus"`
	Articles      []sourceArticleDoc     `json:"articles"`
	AIAnalysis    aiAnalysisDocument     `json:"aiAnalysis"`
	WordpressPost *wordpressPostDocument `json:"wordpressPost,omitempty"`
	TriggeredBy   string                 `json:"triggeredBy,omitempty"`
	DispatchID    string                 `json:"dispatchId,omitempty"`
	StartedAt     *time.Time             `json:"startedAt,omitempty"`
}

type sourceArticleDoc struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	Content   string    `json:"content,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type aiAnalysisDocument struct {
	Content        string         `json:"content,omitempty"`
	GeneratedAt    *time.Time     `json:"generatedAt,omitempty"`
	Status         string         `json:"status"`
	PredictedScore *scoreDocument `json:"predictedScore,omitempty"`
	FailureReason  string         `json:"failureReason,omitempty"`
}

type scoreDocument struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type wordpressPostDocument struct {
	PostID      string     `json:"postId,omitempty"`
	Status      string     `json:"status,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	URL         string     `json:"url,omitempty"`
}

func encodeAnalysis(a match.Analysis) (string, error) {
	doc := analysisDocument{
		IsAnalyzed:  a.IsAnalyzed,
		AIStatus:    string(a.AIStatus),
		Articles:    make([]sourceArticleDoc, 0, len(a.Articles)),
		TriggeredBy: a.TriggeredBy,
		DispatchID:  a.DispatchID,
		StartedAt:   timePtrUTC(a.StartedAt),
		AIAnalysis: aiAnalysisDocument{
			Content:       a.AIAnalysis.Content,
			GeneratedAt:   timePtrUTC(a.AIAnalysis.GeneratedAt),
			Status:        string(a.AIAnalysis.Status),
			FailureReason: a.AIAnalysis.FailureReason,
		},
	}
	for _, item := range a.Articles {
		doc.Articles = append(doc.Articles, sourceArticleDoc{
			Title:     item.Title,
			URL:       item.URL,
			Source:    item.Source,
			Content:   item.Content,
			FetchedAt: item.FetchedAt.UTC(),
		})
	}
	if score := a.AIAnalysis.PredictedScore; score != nil {
		doc.AIAnalysis.PredictedScore = &scoreDocument{Home: score.Home, Away: score.Away}
	}
	if post := a.WordpressPost; post.Status != "" || post.PostID != "" {
		doc.WordpressPost = &wordpressPostDocument{
			PostID:      post.PostID,
			Status:      string(post.Status),
			PublishedAt: timePtrUTC(post.PublishedAt),
			URL:         post.URL,
		}
	}

	raw, err := sonic.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal analysis document: %w", err)
	}
	return string(raw), nil
}

func decodeAnalysis(raw string) (match.Analysis, error) {
	if raw == "" {
		return match.NewAnalysis(), nil
	}

	var doc analysisDocument
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		return match.Analysis{}, fmt.Errorf("unmarshal analysis document: %w", err)
	}

	out := match.Analysis{
		IsAnalyzed:  doc.IsAnalyzed,
		AIStatus:    match.AIStatus(doc.AIStatus),
		TriggeredBy: doc.TriggeredBy,
		DispatchID:  doc.DispatchID,
		StartedAt:   doc.StartedAt,
		AIAnalysis: match.AIAnalysis{
			Content:       doc.AIAnalysis.Content,
			GeneratedAt:   doc.AIAnalysis.GeneratedAt,
			Status:        match.GenerationStatus(doc.AIAnalysis.Status),
			FailureReason: doc.AIAnalysis.FailureReason,
		},
	}
	if out.AIStatus == "" {
		out.AIStatus = match.AIStatusNotGenerated
	}
	if out.AIAnalysis.Status == "" {
		out.AIAnalysis.Status = match.GenerationPending
	}
	if len(doc.Articles) > 0 {
		out.Articles = make([]match.SourceArticle, 0, len(doc.Articles))
		for _, item := range doc.Articles {
			out.Articles = append(out.Articles, match.SourceArticle{
				Title:     item.Title,
				URL:       item.URL,
				Source:    item.Source,
				Content:   item.Content,
				FetchedAt: item.FetchedAt,
			})
		}
	}
	if doc.AIAnalysis.PredictedScore != nil {
		out.AIAnalysis.PredictedScore = &match.Score{
			Home: doc.AIAnalysis.PredictedScore.Home,
			Away: doc.AIAnalysis.PredictedScore.Away,
		}
	}
	if doc.WordpressPost != nil {
		out.WordpressPost = match.WordpressPost{
			PostID:      doc.WordpressPost.PostID,
			Status:      match.PublishStatus(doc.WordpressPost.Status),
			PublishedAt: doc.WordpressPost.PublishedAt,
			URL:         doc.WordpressPost.URL,
		}
	}
	return out, nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	analysis, err := decodeAnalysis(row.Analysis)
	if err != nil {
		return match.Match{}, fmt.Errorf("match %s: %w", row.PublicID, err)
	}

	return match.Match{
		ID:       row.PublicID,
		LeagueID: row.LeaguePublic,
		HomeTeam: match.TeamSide{
			Name:  row.HomeTeamName,
			Logo:  stringFromNull(row.HomeTeamLogo),
			Score: intPtrFromNull(row.HomeScore),
		},
		AwayTeam: match.TeamSide{
			Name:  row.AwayTeamName,
			Logo:  stringFromNull(row.AwayTeamLogo),
			Score: intPtrFromNull(row.AwayScore),
		},
		MatchDate: row.MatchDate,
		Venue:     stringFromNull(row.Venue),
		Status:    match.Status(row.Status),
		Round:     stringFromNull(row.Round),
		Analysis:  analysis,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// analysisColumns are the denormalised columns kept in step with the JSONB
// document so counts and listings never parse JSON.
type analysisColumns struct {
	document      string
	aiStatus      string
	isAnalyzed    bool
	publishStatus *string
	publishedAt   *time.Time
	aiGeneratedAt *time.Time
}

func analysisColumnsFrom(a match.Analysis) (analysisColumns, error) {
	doc, err := encodeAnalysis(a)
	if err != nil {
		return analysisColumns{}, err
	}
	return analysisColumns{
		document:      doc,
		aiStatus:      string(a.AIStatus),
		isAnalyzed:    a.IsAnalyzed,
		publishStatus: optionalString(string(a.WordpressPost.Status)),
		publishedAt:   timePtrUTC(a.WordpressPost.PublishedAt),
		aiGeneratedAt: timePtrUTC(a.AIAnalysis.GeneratedAt),
	}, nil
}

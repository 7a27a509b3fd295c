package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type AIStatus string

const (
	AIStatusNotGenerated AIStatus = "not_generated"
	AIStatusProcessing   AIStatus = "processing"
	AIStatusGenerated    AIStatus = "generated"
)

type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "pending"
	GenerationGenerating GenerationStatus = "generating"
	GenerationGenerated  GenerationStatus = "generated"
	GenerationFailed     GenerationStatus = "failed"
)

type PublishStatus string

const (
	PublishDraft     PublishStatus = "draft"
	PublishPublished PublishStatus = "published"
	PublishFailed    PublishStatus = "failed"
)

func (s PublishStatus) Valid() bool {
	switch s {
	case PublishDraft, PublishPublished, PublishFailed:
		return true
	default:
		return false
	}
}

var (
	ErrMatchNotScheduled        = errors.New("match is not scheduled")
	ErrAnalysisInProgress       = errors.New("analysis already processing")
	ErrAnalysisGenerated        = errors.New("analysis already generated")
	ErrAnalysisNotProcessing    = errors.New("analysis is not processing")
	ErrAnalysisNotGenerated     = errors.New("analysis is not generated")
	ErrInvalidAnalysisResult    = errors.New("invalid analysis result")
	ErrDispatchMismatch         = errors.New("report belongs to another dispatch")
	ErrUnsupportedPublishStatus = errors.New("unsupported publish status")
)

type SourceArticle struct {
	Title     string
	URL       string
	Source    string
	Content   string
	FetchedAt time.Time
}

type Score struct {
	Home int
	Away int
}

type AIAnalysis struct {
	Content        string
	GeneratedAt    *time.Time
	Status         GenerationStatus
	PredictedScore *Score
	FailureReason  string
}

type WordpressPost struct {
	PostID      string
	Status      PublishStatus
	PublishedAt *time.Time
	URL         string
}

// Analysis is the analysis sub-state embedded in a match.
type Analysis struct {
	IsAnalyzed    bool
	AIStatus      AIStatus
	Articles      []SourceArticle
	AIAnalysis    AIAnalysis
	WordpressPost WordpressPost
	TriggeredBy   string
	DispatchID    string
	StartedAt     *time.Time
}

func NewAnalysis() Analysis {
	return Analysis{
		AIStatus:   AIStatusNotGenerated,
		AIAnalysis: AIAnalysis{Status: GenerationPending},
	}
}

// PredictedScore is the loosely typed score reported by the workflow engine.
type PredictedScore struct {
	Home *int
	Away *int
}

// Result is what the workflow engine delivers for a finished run.
type Result struct {
	Articles       []SourceArticle
	Content        string
	PredictedScore *PredictedScore
}

func (r Result) Validate() error {
	if len(r.Articles) == 0 {
		return fmt.Errorf("%w: articles must not be empty", ErrInvalidAnalysisResult)
	}
	for i, item := range r.Articles {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.URL) == "" || strings.TrimSpace(item.Source) == "" {
			return fmt.Errorf("%w: article %d requires title, url and source", ErrInvalidAnalysisResult, i)
		}
		if !validText(item.Title, item.URL, item.Source, item.Content) {
			return fmt.Errorf("%w: article %d contains invalid UTF-8", ErrInvalidAnalysisResult, i)
		}
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: analysis content must not be empty", ErrInvalidAnalysisResult)
	}
	if !utf8.ValidString(r.Content) {
		return fmt.Errorf("%w: analysis content contains invalid UTF-8", ErrInvalidAnalysisResult)
	}
	if r.PredictedScore != nil {
		if r.PredictedScore.Home != nil && *r.PredictedScore.Home < 0 {
			return fmt.Errorf("%w: predicted home score must be >= 0", ErrInvalidAnalysisResult)
		}
		if r.PredictedScore.Away != nil && *r.PredictedScore.Away < 0 {
			return fmt.Errorf("%w: predicted away score must be >= 0", ErrInvalidAnalysisResult)
		}
	}
	return nil
}

// validText reports whether every value is valid UTF-8. Invalid bytes would
// be written back as malformed JSON into the analysis column.
func validText(values ...string) bool {
	for _, v := range values {
		if !utf8.ValidString(v) {
			return false
		}
	}
	return true
}

// Start moves an idle analysis into processing. Only not_generated may start.
func (a Analysis) Start(triggeredBy, dispatchID string, now time.Time) (Analysis, error) {
	switch a.AIStatus {
	case AIStatusProcessing:
		return a, ErrAnalysisInProgress
	case AIStatusGenerated:
		return a, ErrAnalysisGenerated
	}

	next := a.clone()
	startedAt := now.UTC()
	next.AIStatus = AIStatusProcessing
	next.IsAnalyzed = false
	next.AIAnalysis.Status = GenerationGenerating
	next.AIAnalysis.FailureReason = ""
	next.TriggeredBy = triggeredBy
	next.DispatchID = dispatchID
	next.StartedAt = &startedAt
	return next, nil
}

// Complete merges a finished result. It is accepted from any state; callers
// that want a stricter contract check AIStatus first. Articles are replaced,
// never appended, so replaying the same result yields the same state.
func (a Analysis) Complete(result Result, now time.Time) (Analysis, error) {
	if err := result.Validate(); err != nil {
		return a, err
	}

	next := a.clone()
	generatedAt := now.UTC()

	articles := make([]SourceArticle, 0, len(result.Articles))
	for _, item := range result.Articles {
		if item.FetchedAt.IsZero() {
			item.FetchedAt = generatedAt
		}
		articles = append(articles, SourceArticle{
			Title:     strings.TrimSpace(item.Title),
			URL:       strings.TrimSpace(item.URL),
			Source:    strings.TrimSpace(item.Source),
			Content:   item.Content,
			FetchedAt: item.FetchedAt,
		})
	}

	next.Articles = articles
	next.AIAnalysis.Content = result.Content
	next.AIAnalysis.GeneratedAt = &generatedAt
	next.AIAnalysis.Status = GenerationGenerated
	next.AIAnalysis.FailureReason = ""
	if score, ok := normalizePredictedScore(result.PredictedScore); ok {
		next.AIAnalysis.PredictedScore = &score
	}
	next.IsAnalyzed = true
	next.AIStatus = AIStatusGenerated
	return next, nil
}

// Fail records a failed run reported by the workflow engine and returns the
// match to not_generated so it can be triggered again.
func (a Analysis) Fail(reason string) (Analysis, error) {
	if a.AIStatus != AIStatusProcessing {
		return a, fmt.Errorf("%w: current state is %s", ErrAnalysisNotProcessing, a.AIStatus)
	}

	next := a.clone()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "workflow reported failure"
	}
	next.AIStatus = AIStatusNotGenerated
	next.IsAnalyzed = false
	next.AIAnalysis.Status = GenerationFailed
	next.AIAnalysis.FailureReason = reason
	next.StartedAt = nil
	return next, nil
}

// Reset releases a run stuck in processing.
func (a Analysis) Reset() (Analysis, error) {
	switch a.AIStatus {
	case AIStatusGenerated:
		return a, ErrAnalysisGenerated
	case AIStatusNotGenerated:
		return a, fmt.Errorf("%w: current state is %s", ErrAnalysisNotProcessing, a.AIStatus)
	}

	next := a.clone()
	next.AIStatus = AIStatusNotGenerated
	next.IsAnalyzed = false
	next.AIAnalysis.Status = GenerationPending
	next.StartedAt = nil
	return next, nil
}

// Publish records the outcome of the downstream publishing flow.
func (a Analysis) Publish(post WordpressPost, now time.Time) (Analysis, error) {
	if a.AIStatus != AIStatusGenerated {
		return a, fmt.Errorf("%w: current state is %s", ErrAnalysisNotGenerated, a.AIStatus)
	}
	if !post.Status.Valid() {
		return a, fmt.Errorf("%w: %q", ErrUnsupportedPublishStatus, post.Status)
	}

	next := a.clone()
	if post.Status == PublishPublished && post.PublishedAt == nil {
		publishedAt := now.UTC()
		post.PublishedAt = &publishedAt
	}
	next.WordpressPost = post
	return next, nil
}

// Consistent reports whether the record satisfies the generated-state
// invariant: generated implies analyzed with content.
func (a Analysis) Consistent() bool {
	if a.AIStatus == AIStatusGenerated {
		return a.IsAnalyzed && strings.TrimSpace(a.AIAnalysis.Content) != ""
	}
	return true
}

// PublishedOrGeneratedAt is the recency key for recently published articles.
func (a Analysis) PublishedOrGeneratedAt() time.Time {
	if a.WordpressPost.PublishedAt != nil {
		return *a.WordpressPost.PublishedAt
	}
	if a.AIAnalysis.GeneratedAt != nil {
		return *a.AIAnalysis.GeneratedAt
	}
	return time.Time{}
}

func (a Analysis) clone() Analysis {
	out := a
	if a.Articles != nil {
		out.Articles = append([]SourceArticle(nil), a.Articles...)
	}
	if a.AIAnalysis.PredictedScore != nil {
		score := *a.AIAnalysis.PredictedScore
		out.AIAnalysis.PredictedScore = &score
	}
	return out
}

func normalizePredictedScore(in *PredictedScore) (Score, bool) {
	if in == nil || in.Home == nil {
		return Score{}, false
	}
	score := Score{Home: *in.Home}
	if in.Away != nil {
		score.Away = *in.Away
	}
	return score, true
}

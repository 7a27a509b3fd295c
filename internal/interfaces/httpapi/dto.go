package httpapi

import (
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/article"
	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

type pageDTO[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func toPageDTO[S, T any](page usecase.Page[S], convert func(S) T) pageDTO[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	return pageDTO[T]{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}

type leagueDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Season    string    `json:"season"`
	Logo      string    `json:"logo,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{
		ID:        v.ID,
		Name:      v.Name,
		Country:   v.Country,
		Season:    v.Season,
		Logo:      v.Logo,
		Status:    string(v.Status),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

type teamSideDTO struct {
	Name  string `json:"name"`
	Logo  string `json:"logo,omitempty"`
	Score *int   `json:"score,omitempty"`
}

func teamSideToDTO(v match.TeamSide) teamSideDTO {
	return teamSideDTO{Name: v.Name, Logo: v.Logo, Score: v.Score}
}

type sourceArticleDTO struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	Content   string    `json:"content,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type scoreDTO struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type aiAnalysisDTO struct {
	Content        string     `json:"content,omitempty"`
	GeneratedAt    *time.Time `json:"generatedAt,omitempty"`
	Status         string     `json:"status"`
	PredictedScore *scoreDTO  `json:"predictedScore,omitempty"`
	FailureReason  string     `json:"failureReason,omitempty"`
}

type wordpressPostDTO struct {
	PostID      string     `json:"postId,omitempty"`
	Status      string     `json:"status,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	URL         string     `json:"url,omitempty"`
}

type analysisDTO struct {
	IsAnalyzed    bool               `json:"isAnalyzed"`
	AIStatus      string             `json:"aiStatus"`
	Articles      []sourceArticleDTO `json:"articles"`
	AIAnalysis    aiAnalysisDTO      `json:"aiAnalysis"`
	WordpressPost wordpressPostDTO   `json:"wordpressPost"`
	TriggeredBy   string             `json:"triggeredBy,omitempty"`
	DispatchID    string             `json:"dispatchId,omitempty"`
	StartedAt     *time.Time         `json:"startedAt,omitempty"`
}

type matchDTO struct {
	ID        string      `json:"id"`
	LeagueID  string      `json:"leagueId"`
	HomeTeam  teamSideDTO `json:"homeTeam"`
	AwayTeam  teamSideDTO `json:"awayTeam"`
	MatchDate time.Time   `json:"matchDate"`
	Venue     string      `json:"venue,omitempty"`
	Status    string      `json:"status"`
	Round     string      `json:"round,omitempty"`
	Analysis  analysisDTO `json:"analysis"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func scoreToDTO(v *match.Score) *scoreDTO {
	if v == nil {
		return nil
	}
	return &scoreDTO{Home: v.Home, Away: v.Away}
}

func sourceArticlesToDTO(items []match.SourceArticle) []sourceArticleDTO {
	out := make([]sourceArticleDTO, 0, len(items))
	for _, item := range items {
		out = append(out, sourceArticleDTO{
			Title:     item.Title,
			URL:       item.URL,
			Source:    item.Source,
			Content:   item.Content,
			FetchedAt: item.FetchedAt,
		})
	}
	return out
}

func matchToDTO(v match.Match) matchDTO {
	a := v.Analysis
	return matchDTO{
		ID:        v.ID,
		LeagueID:  v.LeagueID,
		HomeTeam:  teamSideToDTO(v.HomeTeam),
		AwayTeam:  teamSideToDTO(v.AwayTeam),
		MatchDate: v.MatchDate,
		Venue:     v.Venue,
		Status:    string(v.Status),
		Round:     v.Round,
		Analysis: analysisDTO{
			IsAnalyzed: a.IsAnalyzed,
			AIStatus:   string(a.AIStatus),
			Articles:   sourceArticlesToDTO(a.Articles),
			AIAnalysis: aiAnalysisDTO{
				Content:        a.AIAnalysis.Content,
				GeneratedAt:    a.AIAnalysis.GeneratedAt,
				Status:         string(a.AIAnalysis.Status),
				PredictedScore: scoreToDTO(a.AIAnalysis.PredictedScore),
				FailureReason:  a.AIAnalysis.FailureReason,
			},
			WordpressPost: wordpressPostDTO{
				PostID:      a.WordpressPost.PostID,
				Status:      string(a.WordpressPost.Status),
				PublishedAt: a.WordpressPost.PublishedAt,
				URL:         a.WordpressPost.URL,
			},
			TriggeredBy: a.TriggeredBy,
			DispatchID:  a.DispatchID,
			StartedAt:   a.StartedAt,
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// The analysis endpoints answer with a bare, compact body the workflow
// engine and the admin UI already parse.
type analysisAckDTO struct {
	Message  string              `json:"message"`
	Match    analysisAckMatchDTO `json:"match"`
	Dispatch *dispatchDTO        `json:"dispatch,omitempty"`
}

type analysisAckMatchDTO struct {
	ID       string                 `json:"_id"`
	HomeTeam teamSideDTO            `json:"homeTeam"`
	AwayTeam teamSideDTO            `json:"awayTeam"`
	Analysis analysisAckAnalysisDTO `json:"analysis"`
}

type analysisAckAnalysisDTO struct {
	IsAnalyzed bool                `json:"isAnalyzed"`
	AIStatus   string              `json:"aiStatus"`
	AIAnalysis analysisAckStateDTO `json:"aiAnalysis"`
}

type analysisAckStateDTO struct {
	Status        string `json:"status"`
	FailureReason string `json:"failureReason,omitempty"`
}

type dispatchDTO struct {
	DispatchID string `json:"dispatchId"`
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	MessageID  string `json:"messageId,omitempty"`
	Error      string `json:"error,omitempty"`
}

func analysisAck(message string, v match.Match) analysisAckDTO {
	return analysisAckDTO{
		Message: message,
		Match: analysisAckMatchDTO{
			ID:       v.ID,
			HomeTeam: teamSideToDTO(v.HomeTeam),
			AwayTeam: teamSideToDTO(v.AwayTeam),
			Analysis: analysisAckAnalysisDTO{
				IsAnalyzed: v.Analysis.IsAnalyzed,
				AIStatus:   string(v.Analysis.AIStatus),
				AIAnalysis: analysisAckStateDTO{
					Status:        string(v.Analysis.AIAnalysis.Status),
					FailureReason: v.Analysis.AIAnalysis.FailureReason,
				},
			},
		},
	}
}

func dispatchToDTO(v usecase.DispatchOutcome) *dispatchDTO {
	return &dispatchDTO{
		DispatchID: v.DispatchID,
		Mode:       string(v.Mode),
		Status:     string(v.Status),
		MessageID:  v.MessageID,
		Error:      v.Error,
	}
}

type articleDTO struct {
	ID             string             `json:"id"`
	MatchID        string             `json:"matchId"`
	LeagueID       string             `json:"leagueId"`
	LeagueName     string             `json:"leagueName,omitempty"`
	HomeTeam       string             `json:"homeTeam"`
	AwayTeam       string             `json:"awayTeam"`
	HomeLogo       string             `json:"homeLogo,omitempty"`
	AwayLogo       string             `json:"awayLogo,omitempty"`
	MatchDate      time.Time          `json:"matchDate"`
	Venue          string             `json:"venue,omitempty"`
	Title          string             `json:"title"`
	Content        string             `json:"content"`
	Sources        []sourceArticleDTO `json:"sources"`
	PredictedScore *scoreDTO          `json:"predictedScore,omitempty"`
	GeneratedAt    time.Time          `json:"generatedAt"`
	PublishedAt    *time.Time         `json:"publishedAt,omitempty"`
}

func articleToDTO(v article.Article) articleDTO {
	return articleDTO{
		ID:             v.ID,
		MatchID:        v.MatchID,
		LeagueID:       v.LeagueID,
		LeagueName:     v.LeagueName,
		HomeTeam:       v.HomeTeam,
		AwayTeam:       v.AwayTeam,
		HomeLogo:       v.HomeLogo,
		AwayLogo:       v.AwayLogo,
		MatchDate:      v.MatchDate,
		Venue:          v.Venue,
		Title:          v.Title,
		Content:        v.Content,
		Sources:        sourceArticlesToDTO(v.Sources),
		PredictedScore: scoreToDTO(v.PredictedScore),
		GeneratedAt:    v.GeneratedAt,
		PublishedAt:    v.PublishedAt,
	}
}

type userTasksDTO struct {
	Triggered int `json:"triggered"`
	Completed int `json:"completed"`
}

type userDTO struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FullName    string       `json:"fullName,omitempty"`
	Role        string       `json:"role"`
	Status      string       `json:"status"`
	Tasks       userTasksDTO `json:"tasks"`
	LastLoginAt *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func userToDTO(v user.User) userDTO {
	return userDTO{
		ID:          v.ID,
		Username:    v.Username,
		Email:       v.Email,
		FullName:    v.FullName,
		Role:        string(v.Role),
		Status:      string(v.Status),
		Tasks:       userTasksDTO{Triggered: v.Tasks.Triggered, Completed: v.Tasks.Completed},
		LastLoginAt: v.LastLoginAt,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

type principalDTO struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginDTO struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userDTO   `json:"user"`
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/observability"
)

const (
	callbackKindSuccess = "success"
	callbackKindFailure = "failure"
)

type callbackArticleRequest struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Source    string     `json:"source"`
	Content   string     `json:"content"`
	FetchedAt *time.Time `json:"fetchedAt"`
}

type callbackScoreRequest struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type analysisCallbackRequest struct {
	Articles          []callbackArticleRequest `json:"articles" validate:"required"`
	AIAnalysisContent string                   `json:"aiAnalysisContent" validate:"required"`
	PredictedScore    *callbackScoreRequest    `json:"predictedScore"`
}

func (req analysisCallbackRequest) toResult() match.Result {
	articles := make([]match.SourceArticle, 0, len(req.Articles))
	for _, item := range req.Articles {
		article := match.SourceArticle{
			Title:   item.Title,
			URL:     item.URL,
			Source:  item.Source,
			Content: item.Content,
		}
		if item.FetchedAt != nil {
			article.FetchedAt = item.FetchedAt.UTC()
		}
		articles = append(articles, article)
	}

	result := match.Result{Articles: articles, Content: req.AIAnalysisContent}
	if req.PredictedScore != nil {
		result.PredictedScore = &match.PredictedScore{
			Home: req.PredictedScore.Home,
			Away: req.PredictedScore.Away,
		}
	}
	return result
}

type analysisFailureRequest struct {
	DispatchID string `json:"dispatchId" validate:"omitempty,max=64"`
	Reason     string `json:"reason" validate:"omitempty,max=2000"`
}

func (h *Handler) TriggerAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerAnalysis")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	result, err := h.analysisService.TriggerAnalysis(ctx, principal, matchID)
	if err != nil {
		h.logFailure(ctx, "trigger analysis failed", err, "match_id", matchID, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}

	body := analysisAck("Analysis triggered", result.Match)
	body.Dispatch = dispatchToDTO(result.Dispatch)
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) ResetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetAnalysis")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	item, err := h.analysisService.ResetAnalysis(ctx, principal, matchID)
	if err != nil {
		h.logFailure(ctx, "reset analysis failed", err, "match_id", matchID, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisAck("Analysis reset", item))
}

func (h *Handler) AnalysisCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AnalysisCallback")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req analysisCallbackRequest
	if err := h.decode(ctx, r, &req, lenient); err != nil {
		observability.RecordCallback(callbackKindSuccess, "rejected")
		h.logFailure(ctx, "analysis callback rejected", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	item, err := h.analysisService.CompleteAnalysis(ctx, matchID, req.toResult())
	if err != nil {
		observability.RecordCallback(callbackKindSuccess, "rejected")
		h.logFailure(ctx, "analysis callback failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	observability.RecordCallback(callbackKindSuccess, "accepted")
	writeJSON(w, http.StatusOK, analysisAck("Analysis updated successfully", item))
}

func (h *Handler) AnalysisFailureCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AnalysisFailureCallback")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req analysisFailureRequest
	if err := h.decode(ctx, r, &req, lenientOrEmpty); err != nil {
		observability.RecordCallback(callbackKindFailure, "rejected")
		writeError(ctx, w, err)
		return
	}

	item, err := h.analysisService.FailAnalysis(ctx, matchID, req.DispatchID, req.Reason)
	if err != nil {
		observability.RecordCallback(callbackKindFailure, "rejected")
		h.logFailure(ctx, "analysis failure callback failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	observability.RecordCallback(callbackKindFailure, "accepted")
	writeJSON(w, http.StatusOK, analysisAck("Analysis failure recorded", item))
}

package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday-preview/internal/domain/article"
)

type articleSyncDTO struct {
	ArticleID string `json:"articleId"`
	MatchID   string `json:"matchId"`
	Created   bool   `json:"created"`
}

type articleBulkSyncDTO struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListArticles")
	defer span.End()

	q := readQuery(r)
	filter := article.Filter{LeagueID: q.String("leagueId"), Search: q.String("search")}
	filter.Limit, filter.Offset = q.Page()
	if err := q.Err(); err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.articleService.List(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "list articles failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPageDTO(page, articleToDTO))
}

func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetArticle")
	defer span.End()

	articleID := r.PathValue("articleID")
	item, err := h.articleService.Get(ctx, articleID)
	if err != nil {
		h.logFailure(ctx, "get article failed", err, "article_id", articleID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, articleToDTO(item))
}

func (h *Handler) SyncMatchArticle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncMatchArticle")
	defer span.End()

	matchID := r.PathValue("matchID")
	result, err := h.articleService.SyncMatch(ctx, matchID)
	if err != nil {
		h.logFailure(ctx, "sync match article failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, articleSyncDTO{
		ArticleID: result.ArticleID,
		MatchID:   result.MatchID,
		Created:   result.Created,
	})
}

func (h *Handler) SyncAllArticles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncAllArticles")
	defer span.End()

	result, err := h.articleService.SyncAll(ctx)
	if err != nil {
		h.logFailure(ctx, "sync all articles failed", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "articles synced", "synced", result.Synced, "failed", result.Failed)
	writeSuccess(ctx, w, http.StatusOK, articleBulkSyncDTO{
		Synced: result.Synced,
		Failed: result.Failed,
		Errors: result.Errors,
	})
}

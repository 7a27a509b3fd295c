package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

type teamSideRequest struct {
	Name  string `json:"name" validate:"omitempty,max=120"`
	Logo  string `json:"logo" validate:"omitempty,url"`
	Score *int   `json:"score" validate:"omitempty,min=0"`
}

func (req teamSideRequest) toTeamSide() match.TeamSide {
	return match.TeamSide{Name: req.Name, Logo: req.Logo, Score: req.Score}
}

type createMatchRequest struct {
	LeagueID  string          `json:"leagueId" validate:"required"`
	HomeTeam  teamSideRequest `json:"homeTeam"`
	AwayTeam  teamSideRequest `json:"awayTeam"`
	MatchDate time.Time       `json:"matchDate" validate:"required"`
	Venue     string          `json:"venue" validate:"omitempty,max=160"`
	Round     string          `json:"round" validate:"omitempty,max=60"`
}

type updateMatchRequest struct {
	LeagueID  string          `json:"leagueId"`
	HomeTeam  teamSideRequest `json:"homeTeam"`
	AwayTeam  teamSideRequest `json:"awayTeam"`
	MatchDate *time.Time      `json:"matchDate"`
	Venue     string          `json:"venue" validate:"omitempty,max=160"`
	Status    string          `json:"status" validate:"omitempty,oneof=scheduled live finished postponed cancelled"`
	Round     string          `json:"round" validate:"omitempty,max=60"`
}

type publicationRequest struct {
	PostID      string     `json:"postId" validate:"omitempty,max=64"`
	Status      string     `json:"status" validate:"required,oneof=draft published failed"`
	PublishedAt *time.Time `json:"publishedAt"`
	URL         string     `json:"url" validate:"omitempty,url"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	q := readQuery(r)
	filter := match.Filter{
		LeagueID:      q.String("leagueId"),
		Status:        match.Status(q.String("status")),
		AIStatus:      match.AIStatus(q.String("aiStatus")),
		IsAnalyzed:    q.Bool("isAnalyzed"),
		PublishStatus: match.PublishStatus(q.String("publishStatus")),
		Search:        q.String("search"),
		From:          q.Time("from"),
		To:            q.Time("to"),
	}
	filter.Limit, filter.Offset = q.Page()
	if err := q.Err(); err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.matchService.List(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "list matches failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPageDTO(page, matchToDTO))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	item, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logFailure(ctx, "get match failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	var req createMatchRequest
	if err := h.decode(ctx, r, &req, strict); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Create(ctx, usecase.MatchInput{
		LeagueID:  req.LeagueID,
		HomeTeam:  req.HomeTeam.toTeamSide(),
		AwayTeam:  req.AwayTeam.toTeamSide(),
		MatchDate: req.MatchDate,
		Venue:     req.Venue,
		Round:     req.Round,
	})
	if err != nil {
		h.logFailure(ctx, "create match failed", err, "league_id", req.LeagueID)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "match created", "match_id", item.ID, "league_id", item.LeagueID)
	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(item))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req updateMatchRequest
	if err := h.decode(ctx, r, &req, strict); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.MatchInput{
		LeagueID: req.LeagueID,
		HomeTeam: req.HomeTeam.toTeamSide(),
		AwayTeam: req.AwayTeam.toTeamSide(),
		Venue:    req.Venue,
		Status:   match.Status(req.Status),
		Round:    req.Round,
	}
	if req.MatchDate != nil {
		input.MatchDate = *req.MatchDate
	}

	item, err := h.matchService.Update(ctx, matchID, input)
	if err != nil {
		h.logFailure(ctx, "update match failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	if err := h.matchService.Delete(ctx, matchID); err != nil {
		h.logFailure(ctx, "delete match failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "match deleted", "match_id", matchID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": matchID})
}

func (h *Handler) RecordPublication(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordPublication")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req publicationRequest
	if err := h.decode(ctx, r, &req, strict); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.RecordPublication(ctx, matchID, match.WordpressPost{
		PostID:      req.PostID,
		Status:      match.PublishStatus(req.Status),
		PublishedAt: req.PublishedAt,
		URL:         req.URL,
	})
	if err != nil {
		h.logFailure(ctx, "record publication failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

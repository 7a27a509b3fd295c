package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

type leagueRequest struct {
	Name    string `json:"name" validate:"omitempty,max=120"`
	Country string `json:"country" validate:"omitempty,max=80"`
	Season  string `json:"season" validate:"omitempty,max=20"`
	Logo    string `json:"logo" validate:"omitempty,url"`
	Status  string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (req leagueRequest) toInput() usecase.LeagueInput {
	return usecase.LeagueInput{
		Name:    req.Name,
		Country: req.Country,
		Season:  req.Season,
		Logo:    req.Logo,
		Status:  league.Status(req.Status),
	}
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	q := readQuery(r)
	filter := league.Filter{Status: league.Status(q.String("status")), Search: q.String("search")}
	filter.Limit, filter.Offset = q.Page()
	if err := q.Err(); err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.leagueService.List(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "list leagues failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPageDTO(page, leagueToDTO))
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	item, err := h.leagueService.Get(ctx, leagueID)
	if err != nil {
		h.logFailure(ctx, "get league failed", err, "league_id", leagueID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	var req leagueRequest
	if err := h.decode(ctx, r, &req, strict); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.Create(ctx, req.toInput())
	if err != nil {
		h.logFailure(ctx, "create league failed", err, "name", req.Name)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "league created", "league_id", item.ID)
	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(item))
}

func (h *Handler) UpdateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	var req leagueRequest
	if err := h.decode(ctx, r, &req, strict); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.Update(ctx, leagueID, req.toInput())
	if err != nil {
		h.logFailure(ctx, "update league failed", err, "league_id", leagueID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) DeleteLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	if err := h.leagueService.Delete(ctx, leagueID); err != nil {
		h.logFailure(ctx, "delete league failed", err, "league_id", leagueID)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "league deleted", "league_id", leagueID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": leagueID})
}

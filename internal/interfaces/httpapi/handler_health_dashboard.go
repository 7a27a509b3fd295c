package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday-preview/internal/observability"
)

// cacheHeader reports whether the dashboard came from the aggregate cache.
const cacheHeader = "X-Cache"

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDashboard")
	defer span.End()

	dashboard, hit, err := h.dashboardService.Get(ctx)
	if err != nil {
		h.logFailure(ctx, "get dashboard failed", err)
		writeError(ctx, w, err)
		return
	}

	observability.RecordDashboardCache(hit)
	state := "MISS"
	if hit {
		state = "HIT"
	}
	w.Header().Set(cacheHeader, state)
	writeSuccess(ctx, w, http.StatusOK, dashboard)
}

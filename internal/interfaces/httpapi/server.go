package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

type RouterOptions struct {
	ServiceName        string
	SwaggerEnabled     bool
	MetricsEnabled     bool
	CORSAllowedOrigins []string
	CallbackAPIKey     string
}

// NewRouter mounts every route and wraps the mux so that tracing sees the
// request first and panics are recovered closest to the handler.
func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, opts RouterOptions) http.Handler {
	if opts.ServiceName == "" {
		opts.ServiceName = "matchday-preview"
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.SwaggerEnabled)
	if opts.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	registerPublicRoutes(mux, handler)
	registerAuthorizedRoutes(mux, handler, verifier)
	registerCallbackRoutes(mux, handler, opts.CallbackAPIKey)

	return chain(mux,
		Tracing(opts.ServiceName),
		AccessLog(logger),
		CORS(opts.CORSAllowedOrigins),
		Recover(logger),
	)
}

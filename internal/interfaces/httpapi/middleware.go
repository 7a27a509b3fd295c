package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// chain applies mws so that the first one sees the request first.
func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// probePaths are polled by load balancers and scrapers. They are neither
// traced nor logged above debug.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/livez":   {},
	"/readyz":  {},
	"/metrics": {},
}

func isProbe(path string) bool {
	_, ok := probePaths[strings.ToLower(strings.TrimRight(strings.TrimSpace(path), "/"))]
	return ok
}

func Tracing(serviceName string) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName+"-http",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool { return !isProbe(r.URL.Path) }),
		)
	}
}

// recorder remembers the status and size of a response.
type recorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rec *recorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.written += n
	return n, err
}

func (rec *recorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

// AccessLog writes one http_request record per request. The level follows the
// status class; probes drop to debug.
func AccessLog(logger *logging.Logger) Middleware {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := max(rec.status, http.StatusOK)
			args := append([]any{
				"http_method", r.Method,
				"http_path", r.URL.Path,
				"http_route", r.Pattern,
				"http_status", status,
				"response_bytes", rec.written,
				"duration_ms", time.Since(started).Milliseconds(),
			}, originOf(r).logArgs()...)

			ctx := r.Context()
			switch {
			case status >= http.StatusInternalServerError:
				logger.ErrorContext(ctx, "http_request", args...)
			case status >= http.StatusBadRequest:
				logger.WarnContext(ctx, "http_request", args...)
			case isProbe(r.URL.Path):
				logger.DebugContext(ctx, "http_request", args...)
			default:
				logger.InfoContext(ctx, "http_request", args...)
			}
		})
	}
}

// Recover turns a handler panic into a 500 envelope.
func Recover(logger *logging.Logger) Middleware {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.ErrorContext(r.Context(), "panic recovered", "panic", v, "http_path", r.URL.Path)
					writeInternalError(r.Context(), w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, Accept, " + apiKeyHeader
	corsMaxAge  = 10 * time.Minute
)

// CORS answers preflights itself and decorates responses for allowed
// origins. A "*" entry allows any origin.
func CORS(origins []string) Middleware {
	wildcard := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		switch o = strings.TrimRight(strings.TrimSpace(o), "/"); o {
		case "":
		case "*":
			wildcard = true
		default:
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			_, listed := allowed[origin]
			switch {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case listed:
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if wildcard || listed {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Expose-Headers", cacheHeader)
				h.Set("Access-Control-Max-Age", strconv.Itoa(int(corsMaxAge.Seconds())))
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestChain_FirstMiddlewareRunsOutermost(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	chain(okHandler, tag("a"), tag("b"), tag("c")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestIsProbe(t *testing.T) {
	for path, want := range map[string]bool{
		"/healthz":             true,
		" /HEALTHZ/ ":          true,
		"/metrics":             true,
		"/readyz":              true,
		"/v1/dashboard":        false,
		"/v1/matches/abc/runs": false,
		"/docs":                false,
	} {
		assert.Equal(t, want, isProbe(path), path)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantAllow  string
	}{
		{name: "listed origin", origins: []string{"https://admin.example.com/"}, method: http.MethodGet, origin: "https://admin.example.com", wantStatus: http.StatusOK, wantAllow: "https://admin.example.com"},
		{name: "unlisted origin", origins: []string{"https://admin.example.com"}, method: http.MethodGet, origin: "https://evil.example.com", wantStatus: http.StatusOK},
		{name: "wildcard preflight", origins: []string{"*"}, method: http.MethodOptions, origin: "https://any.example.com", preflight: true, wantStatus: http.StatusNoContent, wantAllow: "*"},
		{name: "bare options reaches handler", origins: []string{"*"}, method: http.MethodOptions, origin: "https://any.example.com", wantStatus: http.StatusOK, wantAllow: "*"},
		{name: "no origin", origins: []string{"*"}, method: http.MethodGet, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/dashboard", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			CORS(tt.origins)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), apiKeyHeader)
				assert.Equal(t, cacheHeader, rec.Header().Get("Access-Control-Expose-Headers"))
				assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestRecover_WritesInternalError(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()

	Recover(logging.NewNop())(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestAccessLog_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: logging.LevelDebug, Output: &buf})
	handler := AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/v1/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))

	for _, path := range []string{"/healthz", "/v1/dashboard", "/v1/missing", "/v1/broken"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var levels []string
	for _, line := range lines {
		var record map[string]any
		require.NoError(t, sonic.UnmarshalString(line, &record))
		assert.Equal(t, "http_request", record["msg"])
		levels = append(levels, record["level"].(string))
	}
	assert.Equal(t, []string{"DEBUG", "INFO", "WARN", "ERROR"}, levels)

	var ok map[string]any
	require.NoError(t, sonic.UnmarshalString(lines[1], &ok))
	assert.EqualValues(t, 200, ok["http_status"])
	assert.EqualValues(t, 2, ok["response_bytes"])
}

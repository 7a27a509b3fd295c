package workflow

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// maxLoggedBody caps request and response bodies copied into logs, errors
// and span attributes.
const maxLoggedBody = 4096

// errTransient marks failures worth retrying. Only these count against the
// circuit breaker.
var errTransient = crerr.New("transient workflow transport failure")

func isTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

// header is one outgoing request header. Secret values are masked in previews.
type header struct {
	name   string
	value  string
	secret bool
}

// statusError turns a non-2xx response into an error. 408, 429 and 5xx are
// transient.
func statusError(action string, status int, endpoint string, body []byte) error {
	detail := fmt.Sprintf("%s: status=%d url=%s body=%s", action, status, endpoint, clip(strings.TrimSpace(string(body))))
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", errTransient, detail)
	}
	return crerr.New(detail)
}

// parseEndpoint accepts absolute http(s) URLs and strips a trailing slash.
func parseEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", crerr.New("url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", crerr.Wrapf(err, "parse url %q", raw)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return "", crerr.Newf("url %q: scheme must be http or https", raw)
	case u.Host == "":
		return "", crerr.Newf("url %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// curlPreview renders a POST as a copy-pasteable curl command with secrets
// masked, for logs and span attributes.
func curlPreview(endpoint string, headers []header, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	writeQuoted(buf, endpoint)
	for _, h := range headers {
		value := h.value
		if h.secret {
			value = "***"
			if scheme, _, ok := strings.Cut(h.value, " "); ok {
				value = scheme + " ***"
			}
		}
		_, _ = buf.WriteString(" -H ")
		writeQuoted(buf, h.name+": "+value)
	}
	_, _ = buf.WriteString(" -d ")
	writeQuoted(buf, clip(string(body)))
	return buf.String()
}

// writeQuoted single-quotes s for a POSIX shell.
func writeQuoted(buf *bytebufferpool.ByteBuffer, s string) {
	_ = buf.WriteByte('\'')
	_, _ = buf.WriteString(strings.ReplaceAll(s, "'", `'"'"'`))
	_ = buf.WriteByte('\'')
}

func clip(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "...(truncated)"
}

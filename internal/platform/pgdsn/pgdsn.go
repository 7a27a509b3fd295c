// Package pgdsn resolves Postgres connection strings for the app and the
// migration CLI.
package pgdsn

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	preparedBinaryParam = "disable_prepared_binary_result"
	maxSpanQueryLength  = 512
)

var (
	spanQueryWhitespace = regexp.MustCompile(`\s+`)
	spanQueryLiteral    = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// Target is the resolved connection string plus the database name
// reported on spans.
type Target struct {
	DSN  string
	Name string
}

// Resolve accepts URL and key=value DSNs. Binary results for
// prepared statements are disabled on URL DSNs unless the caller set the
// parameter explicitly, which keeps pgbouncer transaction pooling working.
func Resolve(raw string, disablePreparedBinary bool) Target {
	raw = strings.TrimSpace(raw)
	target := Target{DSN: raw}

	parsed, err := url.Parse(raw)
	if err == nil && parsed.Scheme != "" {
		target.Name = strings.Trim(parsed.Path, "/")
		if disablePreparedBinary {
			query := parsed.Query()
			if !query.Has(preparedBinaryParam) {
				query.Set(preparedBinaryParam, "yes")
				parsed.RawQuery = query.Encode()
				target.DSN = parsed.String()
			}
		}
		return target
	}

	for _, field := range strings.Fields(raw) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "dbname" {
			target.Name = strings.Trim(value, `"'`)
			break
		}
	}
	return target
}

// SpanQuery flattens a statement for span attributes. String literals are
// masked since seeded queries carry password hashes.
func SpanQuery(query string) string {
	query = spanQueryLiteral.ReplaceAllString(query, "'?'")
	query = strings.TrimSpace(spanQueryWhitespace.ReplaceAllString(query, " "))
	if len(query) > maxSpanQueryLength {
		return query[:maxSpanQueryLength] + "..."
	}
	return query
}

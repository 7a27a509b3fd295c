package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

// queryReader parses query parameters and keeps the first error, so a
// handler can read every filter and check once.
type queryReader struct {
	values url.Values
	err    error
}

func readQuery(r *http.Request) *queryReader {
	return &queryReader{values: r.URL.Query()}
}

func (q *queryReader) Err() error { return q.err }

func (q *queryReader) fail(key, want string) {
	if q.err == nil {
		q.err = fmt.Errorf("%w: %s must be %s", usecase.ErrInvalidInput, key, want)
	}
}

func (q *queryReader) String(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

// Count reads a non-negative integer; absent means zero.
func (q *queryReader) Count(key string) int {
	raw := q.String(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		q.fail(key, "a non-negative integer")
		return 0
	}
	return v
}

func (q *queryReader) Page() (limit, offset int) {
	return q.Count("limit"), q.Count("offset")
}

// Bool returns nil when the parameter is absent.
func (q *queryReader) Bool(key string) *bool {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(key, "a boolean")
		return nil
	}
	return &v
}

// Time accepts RFC3339 or a bare date, which means midnight UTC.
func (q *queryReader) Time(key string) *time.Time {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	for _, layout := range [...]string{time.RFC3339, time.DateOnly} {
		if v, err := time.Parse(layout, raw); err == nil {
			return &v
		}
	}
	q.fail(key, "RFC3339 or YYYY-MM-DD")
	return nil
}

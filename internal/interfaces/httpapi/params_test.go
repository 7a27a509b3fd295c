package httpapi

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryReader_ParsesFilters(t *testing.T) {
	q := readQuery(httptest.NewRequest("GET", "/v1/matches?limit=10&offset=20&isAnalyzed=true&from=2026-03-01&to=2026-03-08T12:00:00Z&search=+persija+", nil))

	limit, offset := q.Page()
	analyzed := q.Bool("isAnalyzed")
	from, to := q.Time("from"), q.Time("to")
	require.NoError(t, q.Err())

	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
	require.NotNil(t, analyzed)
	assert.True(t, *analyzed)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), *to)
	assert.Equal(t, "persija", q.String("search"))
	assert.Nil(t, q.Bool("missing"))
	assert.Nil(t, q.Time("missing"))
}

func TestQueryReader_KeepsFirstError(t *testing.T) {
	q := readQuery(httptest.NewRequest("GET", "/v1/matches?limit=-1&isAnalyzed=maybe", nil))

	q.Page()
	q.Bool("isAnalyzed")

	require.ErrorIs(t, q.Err(), usecase.ErrInvalidInput)
	assert.Contains(t, q.Err().Error(), "limit must be a non-negative integer")
}

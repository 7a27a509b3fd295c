package usecase

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Page is one slice of a listing plus the total match count.
type Page[T any] struct {
	Items  []T
	Total  int
	Limit  int
	Offset int
}

func normalizePaging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

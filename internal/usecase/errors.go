package usecase

import crerr "github.com/cockroachdb/errors"

// Sentinel errors returned by every service in this package, wrapped with
// the detail the caller needs. The HTTP layer maps each one to a status.
var (
	ErrInvalidInput = crerr.New("invalid input")
	ErrNotFound     = crerr.New("resource not found")
	ErrUnauthorized = crerr.New("unauthorized")
	ErrForbidden    = crerr.New("forbidden")
	// ErrConflict is a state guard refusal, e.g. triggering a match that is
	// already processing.
	ErrConflict = crerr.New("conflict")
	// ErrDependencyUnavailable means a collaborator the request needs is
	// missing or not configured.
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)

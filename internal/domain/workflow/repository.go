package workflow

import "context"

// Dispatcher hands a job to the external workflow engine without waiting for
// the analysis to finish.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) (Receipt, error)
}

// Repository stores the dispatch ledger.
type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
}

package workflow

import (
	"context"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/observability"
)

// Instrumented records dispatch outcomes in Prometheus.
type Instrumented struct {
	next workflow.Dispatcher
	mode workflow.Mode
}

func NewInstrumented(next workflow.Dispatcher, mode workflow.Mode) *Instrumented {
	return &Instrumented{next: next, mode: mode}
}

func (d *Instrumented) Dispatch(ctx context.Context, job workflow.Job) (workflow.Receipt, error) {
	started := time.Now()
	receipt, err := d.next.Dispatch(ctx, job)

	mode := receipt.Mode
	if mode == "" {
		mode = d.mode
	}
	status := workflow.StatusSent
	switch {
	case err != nil:
		status = workflow.StatusFailed
	case receipt.Skipped:
		status = workflow.StatusSkipped
	}
	observability.RecordDispatch(string(mode), string(status), time.Since(started).Seconds())
	return receipt, err
}

package workflow

import (
	"context"

	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

// NoopDispatcher accepts every job without sending it anywhere. The match
// stays processing until a callback or an operator reset arrives.
type NoopDispatcher struct {
	logger *logging.Logger
}

func NewNoopDispatcher(logger *logging.Logger) *NoopDispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &NoopDispatcher{logger: logger}
}

func (d *NoopDispatcher) Dispatch(ctx context.Context, job workflow.Job) (workflow.Receipt, error) {
	d.logger.InfoContext(ctx, "workflow dispatch skipped",
		"match_id", job.MatchID,
		"dispatch_id", job.DispatchID,
		"callback_url", job.CallbackURL,
	)
	return workflow.Receipt{DispatchID: job.DispatchID, Mode: workflow.ModeNoop, Skipped: true}, nil
}

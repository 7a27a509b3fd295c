package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	qb "github.com/riskibarqy/matchday-preview/internal/platform/querybuilder"
)

// DispatchRepository keeps one ledger row per analysis dispatch.
type DispatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewDispatchRepository(db *sqlx.DB) *DispatchRepository {
	return &DispatchRepository{db: db, now: time.Now}
}

func (r *DispatchRepository) UpsertEvent(ctx context.Context, event workflow.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}
	matchID := strings.TrimSpace(event.MatchID)
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}

	mode := strings.TrimSpace(string(event.Mode))
	if mode == "" {
		mode = "unknown"
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = r.now().UTC()
	}

	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}

	model := dispatchInsertModel{
		DispatchID:    dispatchID,
		MatchPublicID: matchID,
		Mode:          mode,
		Payload:       payloadJSON,
		Status:        string(event.Status),
		LastError:     optionalString(event.ErrorMessage),
	}

	switch event.Status {
	case workflow.StatusSent, workflow.StatusSkipped:
		model.SentAt = &occurredAt
		model.SentTraceID = optionalString(event.TraceID)
		model.SentSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case workflow.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.SettledTraceID = optionalString(event.TraceID)
		model.SettledSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case workflow.StatusFailed:
		model.FailedAt = &occurredAt
		model.SettledTraceID = optionalString(event.TraceID)
		model.SettledSpanID = optionalString(event.SpanID)
	}

	query, args, err := qb.InsertModel("analysis_dispatches", model, `ON CONFLICT (dispatch_id)
DO UPDATE SET
    mode = EXCLUDED.mode,
    payload = CASE
        WHEN EXCLUDED.payload = '{}' THEN analysis_dispatches.payload
        ELSE EXCLUDED.payload
    END,
    status = EXCLUDED.status,
    sent_at = COALESCE(analysis_dispatches.sent_at, EXCLUDED.sent_at),
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE analysis_dispatches.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE analysis_dispatches.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    sent_trace_id = COALESCE(analysis_dispatches.sent_trace_id, EXCLUDED.sent_trace_id),
    sent_span_id = COALESCE(analysis_dispatches.sent_span_id, EXCLUDED.sent_span_id),
    settled_trace_id = CASE
        WHEN EXCLUDED.status IN ('completed', 'failed') THEN EXCLUDED.settled_trace_id
        ELSE analysis_dispatches.settled_trace_id
    END,
    settled_span_id = CASE
        WHEN EXCLUDED.status IN ('completed', 'failed') THEN EXCLUDED.settled_span_id
        ELSE analysis_dispatches.settled_span_id
    END,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}

	return nil
}

func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

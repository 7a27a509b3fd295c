package postgres

import "time"

type dispatchInsertModel struct {
	DispatchID     string     `db:"dispatch_id"`
	MatchPublicID  string     `db:"match_public_id"`
	Mode           string     `db:"mode"`
	Payload        string     `db:"payload"`
	Status         string     `db:"status"`
	SentAt         *time.Time `db:"sent_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	FailedAt       *time.Time `db:"failed_at"`
	LastError      *string    `db:"last_error"`
	SentTraceID    *string    `db:"sent_trace_id"`
	SentSpanID     *string    `db:"sent_span_id"`
	SettledTraceID *string    `db:"settled_trace_id"`
	SettledSpanID  *string    `db:"settled_span_id"`
}

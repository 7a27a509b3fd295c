package workflow

import (
	"time"
)

type Mode string

const (
	ModeWebhook Mode = "webhook"
	ModeQStash  Mode = "qstash"
	ModeNoop    Mode = "noop"
)

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
	StatusSkipped   DispatchStatus = "skipped"
)

// Job is the match context sent to the external analysis workflow. It carries
// everything the engine needs to call back with the match id intact.
type Job struct {
	DispatchID         string    `json:"dispatchId"`
	MatchID            string    `json:"matchId"`
	LeagueID           string    `json:"leagueId"`
	LeagueName         string    `json:"leagueName,omitempty"`
	HomeTeam           string    `json:"homeTeam"`
	AwayTeam           string    `json:"awayTeam"`
	MatchDate          time.Time `json:"matchDate"`
	Venue              string    `json:"venue,omitempty"`
	Round              string    `json:"round,omitempty"`
	CallbackURL        string    `json:"callbackUrl"`
	FailureCallbackURL string    `json:"failureCallbackUrl"`
	RequestedBy        string    `json:"requestedBy"`
}

// Receipt is the transport-level outcome of a dispatch. It does not say
// anything about the analysis itself.
type Receipt struct {
	DispatchID string
	Mode       Mode
	MessageID  string
	StatusCode int
	Skipped    bool
}

// DispatchEvent is one ledger entry for a dispatch.
type DispatchEvent struct {
	DispatchID   string
	MatchID      string
	Mode         Mode
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

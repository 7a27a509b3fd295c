package match

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusPostponed Status = "postponed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished, StatusPostponed, StatusCancelled:
		return true
	default:
		return false
	}
}

func NormalizeStatus(value string) Status {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if status == "" {
		return StatusScheduled
	}
	return status
}

// TeamSide is one side of a fixture.
type TeamSide struct {
	Name  string
	Logo  string
	Score *int
}

// Match represents one football fixture together with its analysis state.
type Match struct {
	ID        string
	LeagueID  string
	HomeTeam  TeamSide
	AwayTeam  TeamSide
	MatchDate time.Time
	Venue     string
	Status    Status
	Round     string
	Analysis  Analysis
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.LeagueID) == "" {
		return fmt.Errorf("match league id is required")
	}
	if strings.TrimSpace(m.HomeTeam.Name) == "" {
		return fmt.Errorf("match home team name is required")
	}
	if strings.TrimSpace(m.AwayTeam.Name) == "" {
		return fmt.Errorf("match away team name is required")
	}
	if strings.EqualFold(strings.TrimSpace(m.HomeTeam.Name), strings.TrimSpace(m.AwayTeam.Name)) {
		return fmt.Errorf("match home and away team must differ")
	}
	if m.MatchDate.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if !m.Status.Valid() {
		return fmt.Errorf("match status %q is not supported", m.Status)
	}
	if m.HomeTeam.Score != nil && *m.HomeTeam.Score < 0 {
		return fmt.Errorf("home score must be >= 0")
	}
	if m.AwayTeam.Score != nil && *m.AwayTeam.Score < 0 {
		return fmt.Errorf("away score must be >= 0")
	}
	return nil
}

// CanTriggerAnalysis reports whether the fixture lifecycle allows a new
// analysis run. The analysis sub-state guard is applied separately.
func (m Match) CanTriggerAnalysis() error {
	if m.Status != StatusScheduled {
		return fmt.Errorf("%w: status is %s", ErrMatchNotScheduled, m.Status)
	}
	return nil
}

// Label is used in logs and workflow payloads.
func (m Match) Label() string {
	return m.HomeTeam.Name + " vs " + m.AwayTeam.Name
}

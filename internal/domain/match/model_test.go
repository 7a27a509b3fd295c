package match

import (
	"errors"
	"testing"
	"time"
)

func TestMatchValidate(t *testing.T) {
	valid := Match{
		LeagueID:  "league-1",
		HomeTeam:  TeamSide{Name: "Arsenal"},
		AwayTeam:  TeamSide{Name: "Chelsea"},
		MatchDate: time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC),
		Status:    StatusScheduled,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid match: %v", err)
	}

	sameTeams := valid
	sameTeams.AwayTeam.Name = "arsenal"
	if err := sameTeams.Validate(); err == nil {
		t.Fatalf("expected error for identical teams")
	}

	badStatus := valid
	badStatus.Status = "abandoned"
	if err := badStatus.Validate(); err == nil {
		t.Fatalf("expected error for unsupported status")
	}
}

func TestMatchCanTriggerAnalysis(t *testing.T) {
	item := Match{Status: StatusScheduled}
	if err := item.CanTriggerAnalysis(); err != nil {
		t.Fatalf("scheduled match must be triggerable: %v", err)
	}

	item.Status = StatusFinished
	if err := item.CanTriggerAnalysis(); !errors.Is(err, ErrMatchNotScheduled) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrMatchNotScheduled)
	}
}

package league

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// League is a football competition that matches are grouped under.
type League struct {
	ID        string
	Name      string
	Country   string
	Season    string
	Logo      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l League) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if strings.TrimSpace(l.Country) == "" {
		return fmt.Errorf("league country is required")
	}
	if strings.TrimSpace(l.Season) == "" {
		return fmt.Errorf("league season is required")
	}
	if !l.Status.Valid() {
		return fmt.Errorf("league status %q is not supported", l.Status)
	}

	return nil
}

func (l League) IsActive() bool {
	return l.Status == StatusActive
}

package memory

import (
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
)

const (
	LeagueIDLiga1Indonesia = "0194f3a0-0000-7000-8000-000000000001"
	LeagueIDPremierLeague  = "0194f3a0-0000-7000-8000-000000000002"
	UserIDAdmin            = "0194f3a0-0000-7000-8000-0000000000a1"
)

var seedTime = time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:        LeagueIDLiga1Indonesia,
			Name:      "Liga 1 Indonesia",
			Country:   "Indonesia",
			Season:    "2025/2026",
			Status:    league.StatusActive,
			CreatedAt: seedTime,
			UpdatedAt: seedTime,
		},
		{
			ID:        LeagueIDPremierLeague,
			Name:      "Premier League",
			Country:   "England",
			Season:    "2025/2026",
			Status:    league.StatusActive,
			CreatedAt: seedTime,
			UpdatedAt: seedTime,
		},
	}
}

// SeedMatches returns upcoming fixtures relative to now, all idle.
func SeedMatches(now time.Time) []match.Match {
	fixtures := []struct {
		id, leagueID, home, away, venue, round string
		inDays                                 int
	}{
		{"0194f3a0-0000-7000-8000-0000000000b1", LeagueIDLiga1Indonesia, "Persija Jakarta", "Persib Bandung", "Jakarta International Stadium", "Week 24", 2},
		{"0194f3a0-0000-7000-8000-0000000000b2", LeagueIDLiga1Indonesia, "Persebaya Surabaya", "Bali United", "Gelora Bung Tomo", "Week 24", 3},
		{"0194f3a0-0000-7000-8000-0000000000b3", LeagueIDPremierLeague, "Arsenal", "Liverpool", "Emirates Stadium", "Matchday 27", 4},
	}

	out := make([]match.Match, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, match.Match{
			ID:        f.id,
			LeagueID:  f.leagueID,
			HomeTeam:  match.TeamSide{Name: f.home},
			AwayTeam:  match.TeamSide{Name: f.away},
			MatchDate: now.UTC().Truncate(time.Hour).Add(time.Duration(f.inDays) * 24 * time.Hour),
			Venue:     f.venue,
			Status:    match.StatusScheduled,
			Round:     f.round,
			Analysis:  match.NewAnalysis(),
			CreatedAt: seedTime,
			UpdatedAt: seedTime,
		})
	}
	return out
}

// SeedUsers returns the bootstrap admin account with the given password hash.
func SeedUsers(adminPasswordHash string) []user.User {
	return []user.User{
		{
			ID:           UserIDAdmin,
			Username:     "admin",
			Email:        "admin@matchday.local",
			FullName:     "Administrator",
			PasswordHash: adminPasswordHash,
			Role:         user.RoleAdmin,
			Status:       user.StatusActive,
			CreatedAt:    seedTime,
			UpdatedAt:    seedTime,
		},
	}
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	leaguemock "github.com/riskibarqy/matchday-preview/internal/mocks/domain/league"
	matchmock "github.com/riskibarqy/matchday-preview/internal/mocks/domain/match"
	"github.com/stretchr/testify/mock"
)

func TestLeagueService_List_NormalizesPaging(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, matchmock.NewRepository(t), nil)

	want := league.Filter{Search: "liga", Limit: maxPageLimit, Offset: 0}
	leagueRepo.On("List", mock.Anything, want).Return([]league.League{{ID: testLeagueID}}, nil).Once()
	leagueRepo.On("Count", mock.Anything, want).Return(7, nil).Once()

	got, err := service.List(context.Background(), league.Filter{Search: "  liga ", Limit: 500, Offset: -3})
	if err != nil {
		t.Fatalf("list leagues: %v", err)
	}
	if got.Total != 7 || got.Limit != maxPageLimit || got.Offset != 0 {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestLeagueService_List_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	service := NewLeagueService(leaguemock.NewRepository(t), matchmock.NewRepository(t), nil)

	_, err := service.List(context.Background(), league.Filter{Status: "archived"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeagueService_Create_DefaultsToActive(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, matchmock.NewRepository(t), &staticIDGenerator{ids: []string{testLeagueID}})
	service.now = func() time.Time { return testNow }

	leagueRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(item league.League) bool {
			return item.ID == testLeagueID && item.Status == league.StatusActive && item.CreatedAt.Equal(testNow)
		})).
		Return(nil).
		Once()

	got, err := service.Create(context.Background(), LeagueInput{Name: " Liga 1 ", Country: "Indonesia", Season: "2025/2026"})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	if got.Name != "Liga 1" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}
}

func TestLeagueService_Create_RequiresFields(t *testing.T) {
	t.Parallel()

	service := NewLeagueService(leaguemock.NewRepository(t), matchmock.NewRepository(t), &staticIDGenerator{ids: []string{testLeagueID}})

	_, err := service.Create(context.Background(), LeagueInput{Name: "Liga 1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeagueService_Update_KeepsUnsetFields(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, matchmock.NewRepository(t), nil)

	current := league.League{ID: testLeagueID, Name: "Liga 1", Country: "Indonesia", Season: "2025/2026", Status: league.StatusActive}
	leagueRepo.On("GetByID", mock.Anything, testLeagueID).Return(current, true, nil).Once()
	leagueRepo.
		On("Update", mock.Anything, mock.MatchedBy(func(item league.League) bool {
			return item.Name == "Liga 1" && item.Status == league.StatusInactive
		})).
		Return(nil).
		Once()

	got, err := service.Update(context.Background(), testLeagueID, LeagueInput{Status: league.StatusInactive})
	if err != nil {
		t.Fatalf("update league: %v", err)
	}
	if got.Country != "Indonesia" {
		t.Fatalf("unexpected country: %q", got.Country)
	}
}

func TestLeagueService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("refuses league with matches", func(t *testing.T) {
		t.Parallel()

		leagueRepo := leaguemock.NewRepository(t)
		matchRepo := matchmock.NewRepository(t)
		service := NewLeagueService(leagueRepo, matchRepo, nil)

		leagueRepo.On("GetByID", mock.Anything, testLeagueID).Return(league.League{ID: testLeagueID}, true, nil).Once()
		matchRepo.On("Count", mock.Anything, match.Filter{LeagueID: testLeagueID}).Return(2, nil).Once()

		err := service.Delete(context.Background(), testLeagueID)
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("deletes unused league", func(t *testing.T) {
		t.Parallel()

		leagueRepo := leaguemock.NewRepository(t)
		matchRepo := matchmock.NewRepository(t)
		service := NewLeagueService(leagueRepo, matchRepo, nil)

		leagueRepo.On("GetByID", mock.Anything, testLeagueID).Return(league.League{ID: testLeagueID}, true, nil).Once()
		matchRepo.On("Count", mock.Anything, match.Filter{LeagueID: testLeagueID}).Return(0, nil).Once()
		leagueRepo.On("Delete", mock.Anything, testLeagueID).Return(nil).Once()

		if err := service.Delete(context.Background(), testLeagueID); err != nil {
			t.Fatalf("delete league: %v", err)
		}
	})

	t.Run("missing league", func(t *testing.T) {
		t.Parallel()

		leagueRepo := leaguemock.NewRepository(t)
		service := NewLeagueService(leagueRepo, matchmock.NewRepository(t), nil)

		leagueRepo.On("GetByID", mock.Anything, testLeagueID).Return(league.League{}, false, nil).Once()

		if err := service.Delete(context.Background(), testLeagueID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

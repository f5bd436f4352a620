package memory

import (
	"context"
	"errors"
	"testing"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func TestFixtureStore_InsertBulkAndGet(t *testing.T) {
	store := NewFixtureStore()
	ctx := context.Background()

	fixtures := []*domain.Fixture{
		{Season: "2024-25", Gameweek: 1, MatchID: 1, TeamID: 2, OpponentTeamID: 1, Difficulty: 3},
		{Season: "2024-25", Gameweek: 1, MatchID: 1, TeamID: 1, OpponentTeamID: 2, IsHome: true, Difficulty: 2},
		{Season: "2023-24", Gameweek: 1, MatchID: 1, TeamID: 1, OpponentTeamID: 2, IsHome: true},
	}

	if err := store.InsertBulk(ctx, fixtures); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetBySeason(ctx, "2024-25")
	if err != nil {
		t.Fatalf("GetBySeason failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 fixtures, got %d", len(result))
	}
	if result[0].TeamID != 1 || !result[0].IsHome {
		t.Errorf("Expected home perspective of team 1 first, got %+v", result[0])
	}

	seasons, err := store.ListSeasons(ctx)
	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}
	if len(seasons) != 2 || seasons[0] != "2023-24" || seasons[1] != "2024-25" {
		t.Errorf("Unexpected seasons: %v", seasons)
	}
}

func TestFixtureStore_DuplicateKey(t *testing.T) {
	store := NewFixtureStore()
	ctx := context.Background()

	f := &domain.Fixture{Season: "2024-25", Gameweek: 1, MatchID: 1, TeamID: 1, OpponentTeamID: 2}
	if err := store.InsertBulk(ctx, []*domain.Fixture{f}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.Fixture{f})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

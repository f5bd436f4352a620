package memory

import (
	"context"
	"errors"
	"testing"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func TestAvailabilityStore_InsertBulkAndGetBySeason(t *testing.T) {
	store := NewAvailabilityStore()
	ctx := context.Background()

	chance := 75
	rows := []*domain.PlayerAvailability{
		{PlayerID: 7, Season: "2024-25", Gameweek: 3, Status: domain.StatusAvailable},
		{PlayerID: 3, Season: "2024-25", Gameweek: 4, Status: domain.StatusDoubtful, ChanceOfPlaying: &chance, News: "Knock"},
		{PlayerID: 3, Season: "2024-25", Gameweek: 2, Status: domain.StatusInjured},
		{PlayerID: 3, Season: "2023-24", Gameweek: 2, Status: domain.StatusAvailable},
	}

	if err := store.InsertBulk(ctx, rows); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetBySeason(ctx, "2024-25")
	if err != nil {
		t.Fatalf("GetBySeason failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(result))
	}

	// Ordered by (player_id, gameweek)
	if result[0].PlayerID != 3 || result[0].Gameweek != 2 {
		t.Errorf("Index 0: got (%d, %d)", result[0].PlayerID, result[0].Gameweek)
	}
	if result[1].PlayerID != 3 || result[1].Gameweek != 4 {
		t.Errorf("Index 1: got (%d, %d)", result[1].PlayerID, result[1].Gameweek)
	}
	if result[2].PlayerID != 7 {
		t.Errorf("Index 2: got player %d", result[2].PlayerID)
	}

	// ChanceOfPlaying is copied on insert
	chance = 0
	if result[1].ChanceOfPlaying == nil || *result[1].ChanceOfPlaying != 75 {
		t.Errorf("ChanceOfPlaying = %v, want 75", result[1].ChanceOfPlaying)
	}
	again, _ := store.GetBySeason(ctx, "2024-25")
	if *again[1].ChanceOfPlaying != 75 {
		t.Errorf("stored ChanceOfPlaying changed through caller pointer")
	}
}

func TestAvailabilityStore_Duplicate(t *testing.T) {
	store := NewAvailabilityStore()
	ctx := context.Background()

	row := &domain.PlayerAvailability{PlayerID: 1, Season: "2024-25", Gameweek: 1, Status: domain.StatusAvailable}
	if err := store.InsertBulk(ctx, []*domain.PlayerAvailability{row}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.PlayerAvailability{row})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestAvailabilityStore_InvalidInput(t *testing.T) {
	store := NewAvailabilityStore()
	ctx := context.Background()

	tests := []struct {
		name string
		row  *domain.PlayerAvailability
	}{
		{"nil", nil},
		{"no season", &domain.PlayerAvailability{PlayerID: 1, Gameweek: 1}},
		{"no player", &domain.PlayerAvailability{Season: "2024-25", Gameweek: 1}},
		{"no gameweek", &domain.PlayerAvailability{PlayerID: 1, Season: "2024-25"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.InsertBulk(ctx, []*domain.PlayerAvailability{tt.row})
			if !errors.Is(err, storage.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

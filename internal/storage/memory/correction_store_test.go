package memory

import (
	"context"
	"errors"
	"testing"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func TestCorrectionStore_OrderedByRecordedAt(t *testing.T) {
	store := NewCorrectionStore()
	ctx := context.Background()

	corrections := []*domain.StatCorrection{
		{CorrectionID: "b", PlayerID: 1, Season: "2024-25", Gameweek: 1, MatchID: 10, Field: domain.FieldBonus, NewValue: 3, RecordedAtMs: 2000},
		{CorrectionID: "a", PlayerID: 1, Season: "2024-25", Gameweek: 1, MatchID: 10, Field: domain.FieldBonus, NewValue: 2, RecordedAtMs: 1000},
	}
	for _, c := range corrections {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetBySeason(ctx, "2024-25")
	if err != nil {
		t.Fatalf("GetBySeason failed: %v", err)
	}
	if len(result) != 2 || result[0].CorrectionID != "a" {
		t.Errorf("Expected correction a first, got %+v", result)
	}

	if err := store.Insert(ctx, corrections[0]); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCorrectionStore_RejectsUnknownField(t *testing.T) {
	store := NewCorrectionStore()

	c := &domain.StatCorrection{CorrectionID: "x", PlayerID: 1, Season: "2024-25", Gameweek: 1, Field: "value"}
	if err := store.Insert(context.Background(), c); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	m := &domain.RunManifest{
		RunID:       "run1",
		Season:      "2024-25",
		Models:      []string{domain.ModelForm},
		Status:      domain.RunStatusSucceeded,
		StartedAtMs: 1000,
	}
	if err := store.Insert(ctx, m); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	m.Models[0] = "mutated"

	got, err := store.GetByID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Models[0] != domain.ModelForm {
		t.Errorf("Expected stored models to be copied, got %v", got.Models)
	}

	if err := store.Insert(ctx, m); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_ListBySeasonNewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		m := &domain.RunManifest{RunID: id, Season: "2024-25", StartedAtMs: int64(i * 1000)}
		if err := store.Insert(ctx, m); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	runs, err := store.ListBySeason(ctx, "2024-25")
	if err != nil {
		t.Fatalf("ListBySeason failed: %v", err)
	}
	if len(runs) != 3 || runs[0].RunID != "c" || runs[2].RunID != "a" {
		t.Errorf("Unexpected order: %v, %v, %v", runs[0].RunID, runs[1].RunID, runs[2].RunID)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func TestSplitMetricsStore_InsertBulkAndGetByRun(t *testing.T) {
	store := NewSplitMetricsStore()
	ctx := context.Background()

	metrics := []*domain.SplitMetrics{
		{RunID: "r1", Model: domain.ModelTwoStage, Cutoff: 5, TestGameweek: 6, MAE: 1.5},
		{RunID: "r1", Model: domain.ModelForm, Cutoff: 6, TestGameweek: 7, MAE: 2.5},
		{RunID: "r1", Model: domain.ModelForm, Cutoff: 5, TestGameweek: 6, MAE: 2.0},
		{RunID: "r2", Model: domain.ModelForm, Cutoff: 5, TestGameweek: 6, MAE: 9.0},
	}

	if err := store.InsertBulk(ctx, metrics); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByRun failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 splits, got %d", len(result))
	}

	// Ordered by (model, cutoff)
	want := []struct {
		model  string
		cutoff int
	}{
		{domain.ModelForm, 5},
		{domain.ModelForm, 6},
		{domain.ModelTwoStage, 5},
	}
	for i, w := range want {
		if result[i].Model != w.model || result[i].Cutoff != w.cutoff {
			t.Errorf("Index %d: got (%s, %d), want (%s, %d)", i, result[i].Model, result[i].Cutoff, w.model, w.cutoff)
		}
	}

	// Returned rows are copies.
	result[0].MAE = 100
	again, _ := store.GetByRun(ctx, "r1")
	if again[0].MAE != 2.0 {
		t.Errorf("store mutated through returned row: MAE = %v", again[0].MAE)
	}
}

func TestSplitMetricsStore_Duplicate(t *testing.T) {
	store := NewSplitMetricsStore()
	ctx := context.Background()

	m := &domain.SplitMetrics{RunID: "r1", Model: domain.ModelForm, Cutoff: 5}
	if err := store.InsertBulk(ctx, []*domain.SplitMetrics{m}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.SplitMetrics{
		{RunID: "r1", Model: domain.ModelForm, Cutoff: 6},
		m,
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Entire batch rejected
	result, _ := store.GetByRun(ctx, "r1")
	if len(result) != 1 {
		t.Errorf("Expected batch to be rejected, got %d rows", len(result))
	}
}

func TestSplitMetricsStore_InvalidInput(t *testing.T) {
	store := NewSplitMetricsStore()

	err := store.InsertBulk(context.Background(), []*domain.SplitMetrics{{Model: domain.ModelForm}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

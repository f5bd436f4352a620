package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// SplitMetricsStore is an in-memory implementation of storage.SplitMetricsStore.
type SplitMetricsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SplitMetrics // keyed by (run_id, model, cutoff)
}

// NewSplitMetricsStore creates a new in-memory split metrics store.
func NewSplitMetricsStore() *SplitMetricsStore {
	return &SplitMetricsStore{
		data: make(map[string]*domain.SplitMetrics),
	}
}

func splitMetricsKey(runID, model string, cutoff int) string {
	return fmt.Sprintf("%s|%s|%d", runID, model, cutoff)
}

// InsertBulk adds multiple split results. Fails entire batch on duplicate.
func (s *SplitMetricsStore) InsertBulk(_ context.Context, metrics []*domain.SplitMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(metrics))

	for _, m := range metrics {
		if m == nil || m.RunID == "" || m.Model == "" {
			return storage.ErrInvalidInput
		}
		key := splitMetricsKey(m.RunID, m.Model, m.Cutoff)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, m := range metrics {
		metricsCopy := *m
		s.data[splitMetricsKey(m.RunID, m.Model, m.Cutoff)] = &metricsCopy
	}

	return nil
}

// GetByRun retrieves all split results of a run, ordered by (model, cutoff) ASC.
func (s *SplitMetricsStore) GetByRun(_ context.Context, runID string) ([]*domain.SplitMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SplitMetrics
	for _, m := range s.data {
		if m.RunID == runID {
			metricsCopy := *m
			result = append(result, &metricsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Model != result[j].Model {
			return result[i].Model < result[j].Model
		}
		return result[i].Cutoff < result[j].Cutoff
	})

	return result, nil
}

var _ storage.SplitMetricsStore = (*SplitMetricsStore)(nil)

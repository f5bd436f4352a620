package memory

import (
	"context"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunManifest // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.RunManifest),
	}
}

// Insert records a run manifest. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, m *domain.RunManifest) error {
	if m == nil || m.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[m.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[m.RunID] = copyManifest(m)
	return nil
}

// GetByID retrieves a manifest. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.RunManifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyManifest(m), nil
}

// ListBySeason retrieves manifests of a season, newest first.
func (s *RunStore) ListBySeason(_ context.Context, season string) ([]*domain.RunManifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunManifest
	for _, m := range s.data {
		if m.Season == season {
			result = append(result, copyManifest(m))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAtMs != result[j].StartedAtMs {
			return result[i].StartedAtMs > result[j].StartedAtMs
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

func copyManifest(m *domain.RunManifest) *domain.RunManifest {
	c := *m
	c.Models = append([]string(nil), m.Models...)
	return &c
}

var _ storage.RunStore = (*RunStore)(nil)

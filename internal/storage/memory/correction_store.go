package memory

import (
	"context"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// CorrectionStore is an in-memory implementation of storage.CorrectionStore.
type CorrectionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StatCorrection // keyed by correction_id
}

// NewCorrectionStore creates a new in-memory correction store.
func NewCorrectionStore() *CorrectionStore {
	return &CorrectionStore{
		data: make(map[string]*domain.StatCorrection),
	}
}

// Insert adds a correction. Returns ErrDuplicateKey if correction_id exists.
func (s *CorrectionStore) Insert(_ context.Context, c *domain.StatCorrection) error {
	if c == nil || c.CorrectionID == "" || c.Season == "" {
		return storage.ErrInvalidInput
	}
	if !domain.CorrectableFields[c.Field] {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.CorrectionID]; exists {
		return storage.ErrDuplicateKey
	}

	correctionCopy := *c
	s.data[c.CorrectionID] = &correctionCopy
	return nil
}

// GetBySeason retrieves all corrections of a season, ordered by (recorded_at, correction_id) ASC.
func (s *CorrectionStore) GetBySeason(_ context.Context, season string) ([]*domain.StatCorrection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StatCorrection
	for _, c := range s.data {
		if c.Season == season {
			correctionCopy := *c
			result = append(result, &correctionCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].RecordedAtMs != result[j].RecordedAtMs {
			return result[i].RecordedAtMs < result[j].RecordedAtMs
		}
		return result[i].CorrectionID < result[j].CorrectionID
	})

	return result, nil
}

var _ storage.CorrectionStore = (*CorrectionStore)(nil)

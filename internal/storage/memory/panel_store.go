package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// PanelStore is an in-memory implementation of storage.PanelStore.
type PanelStore struct {
	mu       sync.RWMutex
	data     map[string]*domain.PanelRow // keyed by (version, player_id, season, gameweek)
	versions map[string]string           // data key -> version
}

// NewPanelStore creates a new in-memory panel store.
func NewPanelStore() *PanelStore {
	return &PanelStore{
		data:     make(map[string]*domain.PanelRow),
		versions: make(map[string]string),
	}
}

func panelKey(version string, k domain.PanelKey) string {
	return fmt.Sprintf("%s|%d|%s|%d", version, k.PlayerID, k.Season, k.Gameweek)
}

// InsertBulk adds rows for a panel version. Fails entire batch on duplicate.
func (s *PanelStore) InsertBulk(_ context.Context, version string, rows []*domain.PanelRow) error {
	if version == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))

	for _, r := range rows {
		if r == nil || r.Season == "" || r.PlayerID <= 0 || r.Gameweek <= 0 {
			return storage.ErrInvalidInput
		}
		key := panelKey(version, r.Key())
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		key := panelKey(version, r.Key())
		s.data[key] = r.Clone()
		s.versions[key] = version
	}

	return nil
}

// GetBySeason retrieves a version's rows for a season, ordered by (player_id, gameweek) ASC.
func (s *PanelStore) GetBySeason(_ context.Context, version, season string) ([]*domain.PanelRow, error) {
	return s.filter(version, func(r *domain.PanelRow) bool { return r.Season == season }), nil
}

// GetByGameweekRange retrieves a version's rows for gameweeks within [from, to] (inclusive).
func (s *PanelStore) GetByGameweekRange(_ context.Context, version, season string, from, to int) ([]*domain.PanelRow, error) {
	return s.filter(version, func(r *domain.PanelRow) bool {
		return r.Season == season && r.Gameweek >= from && r.Gameweek <= to
	}), nil
}

// HasVersion reports whether any row exists for the version.
func (s *PanelStore) HasVersion(_ context.Context, version string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions {
		if v == version {
			return true, nil
		}
	}
	return false, nil
}

func (s *PanelStore) filter(version string, keep func(*domain.PanelRow) bool) []*domain.PanelRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PanelRow
	for key, r := range s.data {
		if s.versions[key] == version && keep(r) {
			result = append(result, r.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PlayerID != result[j].PlayerID {
			return result[i].PlayerID < result[j].PlayerID
		}
		return result[i].Gameweek < result[j].Gameweek
	})

	return result
}

var _ storage.PanelStore = (*PanelStore)(nil)

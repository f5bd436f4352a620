package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// AvailabilityStore is an in-memory implementation of storage.AvailabilityStore.
type AvailabilityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PlayerAvailability // keyed by (player_id, season, gameweek)
}

// NewAvailabilityStore creates a new in-memory availability store.
func NewAvailabilityStore() *AvailabilityStore {
	return &AvailabilityStore{
		data: make(map[string]*domain.PlayerAvailability),
	}
}

func availabilityKey(playerID int, season string, gameweek int) string {
	return fmt.Sprintf("%d|%s|%d", playerID, season, gameweek)
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate.
func (s *AvailabilityStore) InsertBulk(_ context.Context, rows []*domain.PlayerAvailability) error {
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
		key := availabilityKey(r.PlayerID, r.Season, r.Gameweek)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		if r.ChanceOfPlaying != nil {
			chance := *r.ChanceOfPlaying
			rowCopy.ChanceOfPlaying = &chance
		}
		s.data[availabilityKey(r.PlayerID, r.Season, r.Gameweek)] = &rowCopy
	}

	return nil
}

// GetBySeason retrieves all snapshots of a season, ordered by (player_id, gameweek) ASC.
func (s *AvailabilityStore) GetBySeason(_ context.Context, season string) ([]*domain.PlayerAvailability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PlayerAvailability
	for _, r := range s.data {
		if r.Season == season {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PlayerID != result[j].PlayerID {
			return result[i].PlayerID < result[j].PlayerID
		}
		return result[i].Gameweek < result[j].Gameweek
	})

	return result, nil
}

var _ storage.AvailabilityStore = (*AvailabilityStore)(nil)

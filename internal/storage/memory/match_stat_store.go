package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// MatchStatStore is an in-memory implementation of storage.MatchStatStore.
type MatchStatStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MatchStatRaw // keyed by (player_id, season, gameweek, match_id)
}

// NewMatchStatStore creates a new in-memory match stat store.
func NewMatchStatStore() *MatchStatStore {
	return &MatchStatStore{
		data: make(map[string]*domain.MatchStatRaw),
	}
}

func matchStatKey(k domain.MatchStatKey) string {
	return fmt.Sprintf("%d|%s|%d|%d", k.PlayerID, k.Season, k.Gameweek, k.MatchID)
}

// InsertBulk adds multiple rows. Fails entire batch on duplicate.
func (s *MatchStatStore) InsertBulk(_ context.Context, rows []*domain.MatchStatRaw) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))

	// First pass: validate and check duplicates (existing + intra-batch)
	for _, r := range rows {
		if r == nil || r.Season == "" || r.PlayerID <= 0 || r.Gameweek <= 0 {
			return storage.ErrInvalidInput
		}
		key := matchStatKey(r.Key())
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range rows {
		rowCopy := *r
		s.data[matchStatKey(r.Key())] = &rowCopy
	}

	return nil
}

// GetBySeason retrieves all rows of a season.
func (s *MatchStatStore) GetBySeason(_ context.Context, season string) ([]*domain.MatchStatRaw, error) {
	return s.filter(func(r *domain.MatchStatRaw) bool { return r.Season == season }), nil
}

// GetByPlayer retrieves one player's rows in a season.
func (s *MatchStatStore) GetByPlayer(_ context.Context, season string, playerID int) ([]*domain.MatchStatRaw, error) {
	return s.filter(func(r *domain.MatchStatRaw) bool {
		return r.Season == season && r.PlayerID == playerID
	}), nil
}

func (s *MatchStatStore) filter(keep func(*domain.MatchStatRaw) bool) []*domain.MatchStatRaw {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MatchStatRaw
	for _, r := range s.data {
		if keep(r) {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		if a.Gameweek != b.Gameweek {
			return a.Gameweek < b.Gameweek
		}
		if a.KickoffMs != b.KickoffMs {
			return a.KickoffMs < b.KickoffMs
		}
		return a.MatchID < b.MatchID
	})

	return result
}

var _ storage.MatchStatStore = (*MatchStatStore)(nil)

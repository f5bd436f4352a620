package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// TeamMatchStatStore is an in-memory implementation of storage.TeamMatchStatStore.
type TeamMatchStatStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TeamMatchStat // keyed by (team_id, season, gameweek, match_id)
}

// NewTeamMatchStatStore creates a new in-memory team match stat store.
func NewTeamMatchStatStore() *TeamMatchStatStore {
	return &TeamMatchStatStore{
		data: make(map[string]*domain.TeamMatchStat),
	}
}

func teamMatchKey(k domain.TeamMatchKey) string {
	return fmt.Sprintf("%d|%s|%d|%d", k.TeamID, k.Season, k.Gameweek, k.MatchID)
}

// InsertBulk adds multiple rows. Fails entire batch on duplicate.
func (s *TeamMatchStatStore) InsertBulk(_ context.Context, rows []*domain.TeamMatchStat) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))

	for _, r := range rows {
		if r == nil || r.Season == "" || r.TeamID <= 0 || r.Gameweek <= 0 {
			return storage.ErrInvalidInput
		}
		key := teamMatchKey(r.Key())
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
		s.data[teamMatchKey(r.Key())] = &rowCopy
	}

	return nil
}

// GetBySeason retrieves all rows of a season, ordered by (team_id, gameweek, match_id) ASC.
func (s *TeamMatchStatStore) GetBySeason(_ context.Context, season string) ([]*domain.TeamMatchStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TeamMatchStat
	for _, r := range s.data {
		if r.Season == season {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		if a.Gameweek != b.Gameweek {
			return a.Gameweek < b.Gameweek
		}
		return a.MatchID < b.MatchID
	})

	return result, nil
}

var _ storage.TeamMatchStatStore = (*TeamMatchStatStore)(nil)

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// FixtureStore is an in-memory implementation of storage.FixtureStore.
type FixtureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Fixture // keyed by (season, gameweek, team_id, match_id)
}

// NewFixtureStore creates a new in-memory fixture store.
func NewFixtureStore() *FixtureStore {
	return &FixtureStore{
		data: make(map[string]*domain.Fixture),
	}
}

func fixtureKey(k domain.FixtureKey) string {
	return fmt.Sprintf("%s|%d|%d|%d", k.Season, k.Gameweek, k.TeamID, k.MatchID)
}

// InsertBulk adds multiple fixtures. Fails entire batch on duplicate.
func (s *FixtureStore) InsertBulk(_ context.Context, fixtures []*domain.Fixture) error {
	if len(fixtures) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(fixtures))

	for _, f := range fixtures {
		if f == nil || f.Season == "" || f.TeamID <= 0 || f.Gameweek <= 0 {
			return storage.ErrInvalidInput
		}
		key := fixtureKey(f.Key())
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, f := range fixtures {
		fixtureCopy := *f
		s.data[fixtureKey(f.Key())] = &fixtureCopy
	}

	return nil
}

// GetBySeason retrieves all fixtures of a season, ordered by (team_id, gameweek, kickoff, match_id) ASC.
func (s *FixtureStore) GetBySeason(_ context.Context, season string) ([]*domain.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Fixture
	for _, f := range s.data {
		if f.Season == season {
			fixtureCopy := *f
			result = append(result, &fixtureCopy)
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
		if a.KickoffMs != b.KickoffMs {
			return a.KickoffMs < b.KickoffMs
		}
		return a.MatchID < b.MatchID
	})

	return result, nil
}

// ListSeasons returns all seasons with at least one fixture, ascending.
func (s *FixtureStore) ListSeasons(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, f := range s.data {
		seen[f.Season] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for season := range seen {
		result = append(result, season)
	}
	sort.Strings(result)

	return result, nil
}

var _ storage.FixtureStore = (*FixtureStore)(nil)

package ingestion

import (
	"errors"
	"sort"

	"fpl-points-lab/internal/domain"
)

// ErrInvalidOrdering is returned when rows are not properly ordered.
var ErrInvalidOrdering = errors.New("rows are not in deterministic order")

// SortMatchStats orders rows by (player_id ASC, gameweek ASC, kickoff ASC, match_id ASC).
func SortMatchStats(rows []*domain.MatchStatRaw) {
	sort.Slice(rows, func(i, j int) bool {
		return compareMatchStats(rows[i], rows[j]) < 0
	})
}

// SortFixtures orders fixtures by (team_id ASC, gameweek ASC, kickoff ASC, match_id ASC).
func SortFixtures(fixtures []*domain.Fixture) {
	sort.Slice(fixtures, func(i, j int) bool {
		return compareFixtures(fixtures[i], fixtures[j]) < 0
	})
}

// SortTeamStats orders rows by (team_id ASC, gameweek ASC, match_id ASC).
func SortTeamStats(rows []*domain.TeamMatchStat) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		if a.Gameweek != b.Gameweek {
			return a.Gameweek < b.Gameweek
		}
		return a.MatchID < b.MatchID
	})
}

// SortAvailability orders snapshots by (player_id ASC, gameweek ASC).
func SortAvailability(rows []*domain.PlayerAvailability) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PlayerID != rows[j].PlayerID {
			return rows[i].PlayerID < rows[j].PlayerID
		}
		return rows[i].Gameweek < rows[j].Gameweek
	})
}

// ValidateMatchStatOrdering checks if rows are properly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateMatchStatOrdering(rows []*domain.MatchStatRaw) error {
	for i := 1; i < len(rows); i++ {
		if compareMatchStats(rows[i-1], rows[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// ValidateFixtureOrdering checks if fixtures are properly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateFixtureOrdering(fixtures []*domain.Fixture) error {
	for i := 1; i < len(fixtures); i++ {
		if compareFixtures(fixtures[i-1], fixtures[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareMatchStats returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (player_id ASC, gameweek ASC, kickoff ASC, match_id ASC)
func compareMatchStats(a, b *domain.MatchStatRaw) int {
	if c := compareInt64(int64(a.PlayerID), int64(b.PlayerID)); c != 0 {
		return c
	}
	if c := compareInt64(int64(a.Gameweek), int64(b.Gameweek)); c != 0 {
		return c
	}
	if c := compareInt64(a.KickoffMs, b.KickoffMs); c != 0 {
		return c
	}
	return compareInt64(int64(a.MatchID), int64(b.MatchID))
}

// compareFixtures returns comparison result for fixtures.
// Order: (team_id ASC, gameweek ASC, kickoff ASC, match_id ASC)
func compareFixtures(a, b *domain.Fixture) int {
	if c := compareInt64(int64(a.TeamID), int64(b.TeamID)); c != 0 {
		return c
	}
	if c := compareInt64(int64(a.Gameweek), int64(b.Gameweek)); c != 0 {
		return c
	}
	if c := compareInt64(a.KickoffMs, b.KickoffMs); c != 0 {
		return c
	}
	return compareInt64(int64(a.MatchID), int64(b.MatchID))
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

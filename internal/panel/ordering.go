package panel

import (
	"sort"

	"fpl-points-lab/internal/domain"
)

// SortRows orders rows by (season ASC, player_id ASC, gameweek ASC).
func SortRows(rows []*domain.PanelRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.Gameweek < b.Gameweek
	})
}

// sortMatches orders raw rows by (player_id, gameweek, kickoff, match_id).
func sortMatches(rows []*domain.MatchStatRaw) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
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
}

// sortFixtures orders a team's fixtures by (kickoff, match_id).
func sortFixtures(fixtures []*domain.Fixture) {
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].KickoffMs != fixtures[j].KickoffMs {
			return fixtures[i].KickoffMs < fixtures[j].KickoffMs
		}
		return fixtures[i].MatchID < fixtures[j].MatchID
	})
}

// sortTeamMatches orders a team's matches by (gameweek, match_id).
func sortTeamMatches(matches []*domain.TeamMatchStat) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Gameweek != matches[j].Gameweek {
			return matches[i].Gameweek < matches[j].Gameweek
		}
		return matches[i].MatchID < matches[j].MatchID
	})
}

func sortInts(v []int) {
	sort.Ints(v)
}

package panel

import (
	"fpl-points-lab/internal/domain"
)

// Panel is a season's player-gameweek grid plus the indexes the feature
// engine and target shifter read from. Rows are sorted by (player_id, gameweek).
type Panel struct {
	Season       string
	LastGameweek int // highest gameweek with a panel row
	Rows         []*domain.PanelRow

	// Missing lists gameweeks where the team had a fixture but the player had no raw row.
	Missing []*domain.MissingDataError

	lines        map[domain.PanelKey]*domain.GameweekLine
	teamMatches  map[int][]*domain.TeamMatchStat // team_id -> matches ordered by (gameweek, match_id)
	fixtures     map[teamGameweek][]*domain.Fixture
	availability map[domain.PanelKey]*domain.PlayerAvailability
}

type teamGameweek struct {
	teamID   int
	gameweek int
}

// Line returns the player's gameweek line, or nil outside the player's range.
func (p *Panel) Line(playerID, gameweek int) *domain.GameweekLine {
	return p.lines[domain.PanelKey{PlayerID: playerID, Season: p.Season, Gameweek: gameweek}]
}

// TeamMatches returns a team's matches ordered by (gameweek, match_id).
func (p *Panel) TeamMatches(teamID int) []*domain.TeamMatchStat {
	return p.teamMatches[teamID]
}

// Fixtures returns a team's fixtures in a gameweek ordered by kickoff.
func (p *Panel) Fixtures(teamID, gameweek int) []*domain.Fixture {
	return p.fixtures[teamGameweek{teamID: teamID, gameweek: gameweek}]
}

// Availability returns the pre-deadline snapshot for a row, or nil.
func (p *Panel) Availability(key domain.PanelKey) *domain.PlayerAvailability {
	return p.availability[key]
}

// Row returns the row for a key, or nil.
func (p *Panel) Row(key domain.PanelKey) *domain.PanelRow {
	for lo, hi := 0, len(p.Rows); lo < hi; {
		mid := (lo + hi) / 2
		r := p.Rows[mid]
		switch {
		case r.PlayerID == key.PlayerID && r.Gameweek == key.Gameweek:
			if r.Season == key.Season {
				return r
			}
			return nil
		case r.PlayerID < key.PlayerID || (r.PlayerID == key.PlayerID && r.Gameweek < key.Gameweek):
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return nil
}

// Gameweeks returns the ascending distinct gameweeks present in the panel.
func (p *Panel) Gameweeks() []int {
	seen := make(map[int]bool)
	var gws []int
	for _, r := range p.Rows {
		if !seen[r.Gameweek] {
			seen[r.Gameweek] = true
			gws = append(gws, r.Gameweek)
		}
	}
	sortInts(gws)
	return gws
}

package domain

// Fixture is one team's view of a scheduled match.
// Each real fixture is stored twice, once per team perspective.
// Corresponds to fixtures table in PostgreSQL.
type Fixture struct {
	Season         string
	Gameweek       int
	MatchID        int
	TeamID         int
	OpponentTeamID int
	IsHome         bool
	Difficulty     int      // FPL fixture difficulty rating (1..5) for TeamID
	KickoffMs      int64    // Unix ms, 0 if not scheduled
	Finished       bool     // match completed
	TeamScore      *int     // goals by TeamID, NULL until played
	OpponentScore  *int     // goals by OpponentTeamID, NULL until played
	DaysRest       *float64 // days since TeamID's previous kickoff, NULL for first fixture
	IsDoubleGW     bool     // TeamID has more than one fixture in Gameweek
}

// FixtureKey is the composite key of Fixture.
type FixtureKey struct {
	Season   string
	Gameweek int
	TeamID   int
	MatchID  int
}

// Key returns the composite key of the fixture row.
func (f *Fixture) Key() FixtureKey {
	return FixtureKey{
		Season:   f.Season,
		Gameweek: f.Gameweek,
		TeamID:   f.TeamID,
		MatchID:  f.MatchID,
	}
}

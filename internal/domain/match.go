package domain

// MatchStatRaw is one player's statistics for one match as ingested.
// Corresponds to player_match_stats_raw table in PostgreSQL.
// Rows are immutable; corrections are recorded separately as StatCorrection.
type MatchStatRaw struct {
	PlayerID       int      // FPL element id
	Season         string   // e.g. "2024-25"
	Gameweek       int      // FPL event (round)
	MatchID        int      // FPL fixture id
	TeamID         int      // team the player appeared for
	OpponentTeamID int      // opponent team id
	WasHome        bool     // true if TeamID was the home side
	KickoffMs      int64    // kickoff time, Unix ms (0 if unknown)
	Position       Position // position at time of match

	Minutes         int
	TotalPoints     int
	GoalsScored     int
	Assists         int
	CleanSheets     int
	GoalsConceded   int
	OwnGoals        int
	PenaltiesSaved  int
	PenaltiesMissed int
	YellowCards     int
	RedCards        int
	Saves           int
	Bonus           int
	BPS             int
	Influence       float64
	Creativity      float64
	Threat          float64
	ICTIndex        float64

	Value            int // price in tenths of a million at the deadline
	TransfersBalance int
	Selected         int
	TransfersIn      int
	TransfersOut     int

	// Advanced stats, NULL when the provider has no data for the match.
	XG        *float64
	XA        *float64
	Shots     *int
	KeyPasses *int
}

// MatchStatKey is the composite key of MatchStatRaw.
type MatchStatKey struct {
	PlayerID int
	Season   string
	Gameweek int
	MatchID  int
}

// Key returns the composite key of the row.
func (m *MatchStatRaw) Key() MatchStatKey {
	return MatchStatKey{
		PlayerID: m.PlayerID,
		Season:   m.Season,
		Gameweek: m.Gameweek,
		MatchID:  m.MatchID,
	}
}

// Price returns the player's price in millions.
func (m *MatchStatRaw) Price() float64 {
	return float64(m.Value) / 10
}

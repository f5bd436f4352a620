package domain

// TeamMatchStat is one team's aggregate statistics for one match.
// Used only as input to rolling team-strength aggregation.
// Corresponds to team_match_stats table in PostgreSQL.
type TeamMatchStat struct {
	TeamID         int
	Season         string
	Gameweek       int
	MatchID        int
	OpponentTeamID int
	WasHome        bool
	GoalsScored    int
	GoalsConceded  int
	CleanSheet     bool
	TotalPoints    int      // sum of player FPL points
	BPS            int      // sum of player BPS
	XG             *float64 // NULL if no advanced data
	XGA            *float64 // NULL if no advanced data
}

// TeamMatchKey is the composite key of TeamMatchStat.
type TeamMatchKey struct {
	TeamID   int
	Season   string
	Gameweek int
	MatchID  int
}

// Key returns the composite key of the row.
func (t *TeamMatchStat) Key() TeamMatchKey {
	return TeamMatchKey{
		TeamID:   t.TeamID,
		Season:   t.Season,
		Gameweek: t.Gameweek,
		MatchID:  t.MatchID,
	}
}

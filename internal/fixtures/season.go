// Package fixtures builds small deterministic seasons for tests and demo runs.
package fixtures

import (
	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/ingestion"
	"fpl-points-lab/internal/storage"
)

const (
	weekMs        = int64(7 * 24 * 60 * 60 * 1000)
	seasonStartMs = int64(1723276800000) // 2024-08-10 08:00:00 UTC
)

// SeasonBuilder accumulates raw rows for one season.
type SeasonBuilder struct {
	season   string
	nextID   int
	fixtures []*domain.Fixture
	matches  []*domain.MatchStatRaw
	teams    []*domain.TeamMatchStat
	avail    []*domain.PlayerAvailability
	corr     []*domain.StatCorrection
}

// NewSeason creates an empty builder.
func NewSeason(season string) *SeasonBuilder {
	return &SeasonBuilder{season: season, nextID: 1}
}

// Kickoff returns the nominal kickoff of a gameweek; n offsets double gameweek matches by days.
func Kickoff(gameweek, n int) int64 {
	return seasonStartMs + int64(gameweek-1)*weekMs + int64(n)*24*60*60*1000
}

// Fixture schedules home vs away in a gameweek and returns the match id.
// Both team perspectives are recorded. n orders matches within a gameweek.
func (b *SeasonBuilder) Fixture(gameweek, home, away, n int) int {
	matchID := b.nextID
	b.nextID++
	kickoff := Kickoff(gameweek, n)

	b.fixtures = append(b.fixtures,
		&domain.Fixture{Season: b.season, Gameweek: gameweek, MatchID: matchID, TeamID: home, OpponentTeamID: away,
			IsHome: true, Difficulty: 3, KickoffMs: kickoff, Finished: true},
		&domain.Fixture{Season: b.season, Gameweek: gameweek, MatchID: matchID, TeamID: away, OpponentTeamID: home,
			IsHome: false, Difficulty: 3, KickoffMs: kickoff, Finished: true},
	)
	return matchID
}

// Played records a player's match line. The match must have been scheduled with Fixture.
func (b *SeasonBuilder) Played(playerID int, pos domain.Position, teamID, matchID, minutes, points int) *domain.MatchStatRaw {
	f := b.fixtureFor(teamID, matchID)
	if f == nil {
		panic("fixtures: no fixture for team/match")
	}
	m := &domain.MatchStatRaw{
		PlayerID:       playerID,
		Season:         b.season,
		Gameweek:       f.Gameweek,
		MatchID:        matchID,
		TeamID:         teamID,
		OpponentTeamID: f.OpponentTeamID,
		WasHome:        f.IsHome,
		KickoffMs:      f.KickoffMs,
		Position:       pos,
		Minutes:        minutes,
		TotalPoints:    points,
		Value:          50,
	}
	b.matches = append(b.matches, m)
	return m
}

// RawMatch records a raw row without requiring a fixture. Used to provoke schema errors.
func (b *SeasonBuilder) RawMatch(m *domain.MatchStatRaw) {
	m.Season = b.season
	b.matches = append(b.matches, m)
}

// TeamMatch records a team's aggregate line for a match.
func (b *SeasonBuilder) TeamMatch(teamID, matchID, scored, conceded int) *domain.TeamMatchStat {
	f := b.fixtureFor(teamID, matchID)
	if f == nil {
		panic("fixtures: no fixture for team/match")
	}
	t := &domain.TeamMatchStat{
		TeamID:         teamID,
		Season:         b.season,
		Gameweek:       f.Gameweek,
		MatchID:        matchID,
		OpponentTeamID: f.OpponentTeamID,
		WasHome:        f.IsHome,
		GoalsScored:    scored,
		GoalsConceded:  conceded,
		CleanSheet:     conceded == 0,
	}
	b.teams = append(b.teams, t)
	return t
}

// Availability records a pre-deadline snapshot.
func (b *SeasonBuilder) Availability(playerID, gameweek int, status domain.AvailabilityStatus, chance *int) {
	b.avail = append(b.avail, &domain.PlayerAvailability{
		PlayerID:        playerID,
		Season:          b.season,
		Gameweek:        gameweek,
		Status:          status,
		ChanceOfPlaying: chance,
		SnapshotAtMs:    Kickoff(gameweek, 0) - 24*60*60*1000,
	})
}

// Correction records a stat correction.
func (b *SeasonBuilder) Correction(c *domain.StatCorrection) {
	c.Season = b.season
	b.corr = append(b.corr, c)
}

// Raw returns the accumulated rows with days_rest and double gameweek flags derived.
func (b *SeasonBuilder) Raw() *storage.SeasonRaw {
	ingestion.DeriveFixtureContext(b.fixtures)
	return &storage.SeasonRaw{
		Season:       b.season,
		MatchStats:   b.matches,
		TeamStats:    b.teams,
		Fixtures:     b.fixtures,
		Availability: b.avail,
		Corrections:  b.corr,
	}
}

func (b *SeasonBuilder) fixtureFor(teamID, matchID int) *domain.Fixture {
	for _, f := range b.fixtures {
		if f.TeamID == teamID && f.MatchID == matchID {
			return f
		}
	}
	return nil
}

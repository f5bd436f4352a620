package ingestion

import (
	"fmt"
	"sort"
	"time"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

const dayMs = int64(24 * 60 * 60 * 1000)

// Dump is one season's FPL payloads as read from disk.
type Dump struct {
	Season     string
	Bootstrap  *Bootstrap
	Fixtures   []Fixture
	Histories  []PlayerHistory
	SnapshotAt time.Time // when bootstrap-static was captured
}

// Transform converts a dump into raw tables. Fixtures are expanded to both
// team perspectives, player history rows become MatchStatRaw, team lines are
// aggregated from player rows and the bootstrap status becomes an
// availability snapshot for the next gameweek.
func Transform(d *Dump) (*storage.SeasonRaw, error) {
	if d.Bootstrap == nil {
		return nil, fmt.Errorf("transform %s: bootstrap missing", d.Season)
	}

	fixtures, byID, err := ExpandFixtures(d.Season, d.Fixtures)
	if err != nil {
		return nil, err
	}

	matches, err := matchStats(d, byID)
	if err != nil {
		return nil, err
	}

	raw := &storage.SeasonRaw{
		Season:       d.Season,
		Fixtures:     fixtures,
		MatchStats:   matches,
		TeamStats:    TeamStats(matches, byID),
		Availability: availability(d),
	}
	return raw, nil
}

// ExpandFixtures turns API fixtures into two domain rows each (home and away
// perspective) and derives days of rest and double gameweek flags.
// Unscheduled fixtures (no event) are skipped. The returned map indexes the
// source fixtures by id.
func ExpandFixtures(season string, in []Fixture) ([]*domain.Fixture, map[int]Fixture, error) {
	byID := make(map[int]Fixture, len(in))
	out := make([]*domain.Fixture, 0, 2*len(in))

	for _, f := range in {
		if f.Event == nil {
			continue
		}
		if _, dup := byID[f.ID]; dup {
			return nil, nil, fmt.Errorf("fixture %d listed twice", f.ID)
		}
		byID[f.ID] = f

		kickoff, err := parseKickoff(f.KickoffTime)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture %d: %w", f.ID, err)
		}
		out = append(out,
			&domain.Fixture{
				Season: season, Gameweek: *f.Event, MatchID: f.ID,
				TeamID: f.TeamH, OpponentTeamID: f.TeamA, IsHome: true,
				Difficulty: f.TeamHDifficulty, KickoffMs: kickoff, Finished: f.Finished,
				TeamScore: f.TeamHScore, OpponentScore: f.TeamAScore,
			},
			&domain.Fixture{
				Season: season, Gameweek: *f.Event, MatchID: f.ID,
				TeamID: f.TeamA, OpponentTeamID: f.TeamH, IsHome: false,
				Difficulty: f.TeamADifficulty, KickoffMs: kickoff, Finished: f.Finished,
				TeamScore: f.TeamAScore, OpponentScore: f.TeamHScore,
			},
		)
	}

	DeriveFixtureContext(out)
	SortFixtures(out)
	return out, byID, nil
}

// DeriveFixtureContext sets DaysRest (gap to the team's previous kickoff) and
// IsDoubleGW (more than one fixture for the team in the gameweek) in place.
// A team's first fixture, or one without a kickoff, has nil DaysRest.
func DeriveFixtureContext(fixtures []*domain.Fixture) {
	byTeam := make(map[int][]*domain.Fixture)
	perGW := make(map[[2]int]int)
	for _, f := range fixtures {
		byTeam[f.TeamID] = append(byTeam[f.TeamID], f)
		perGW[[2]int{f.TeamID, f.Gameweek}]++
	}

	for _, fs := range byTeam {
		sort.Slice(fs, func(i, j int) bool {
			if fs[i].KickoffMs != fs[j].KickoffMs {
				return fs[i].KickoffMs < fs[j].KickoffMs
			}
			return fs[i].MatchID < fs[j].MatchID
		})
		for i, f := range fs {
			f.IsDoubleGW = perGW[[2]int{f.TeamID, f.Gameweek}] > 1
			f.DaysRest = nil
			if i > 0 && f.KickoffMs > 0 && fs[i-1].KickoffMs > 0 {
				days := float64(f.KickoffMs-fs[i-1].KickoffMs) / float64(dayMs)
				f.DaysRest = &days
			}
		}
	}
}

func matchStats(d *Dump, fixtures map[int]Fixture) ([]*domain.MatchStatRaw, error) {
	elements := make(map[int]Element, len(d.Bootstrap.Elements))
	for _, e := range d.Bootstrap.Elements {
		elements[e.ID] = e
	}

	var out []*domain.MatchStatRaw
	for _, ph := range d.Histories {
		el, ok := elements[ph.PlayerID]
		if !ok {
			return nil, &domain.SchemaError{
				Key:    domain.PanelKey{PlayerID: ph.PlayerID, Season: d.Season},
				Detail: "player history without bootstrap element",
			}
		}
		pos := domain.PositionFromElementType(el.ElementType)
		if pos == "" {
			return nil, &domain.SchemaError{
				Key:    domain.PanelKey{PlayerID: ph.PlayerID, Season: d.Season},
				Detail: fmt.Sprintf("unknown element_type %d", el.ElementType),
			}
		}

		for _, h := range ph.Data.History {
			kickoff, err := parseKickoff(h.KickoffTime)
			if err != nil {
				return nil, fmt.Errorf("player %d fixture %d: %w", ph.PlayerID, h.Fixture, err)
			}

			// The player's team at match time comes from the fixture; the
			// bootstrap team is only the current one.
			teamID := el.Team
			if f, ok := fixtures[h.Fixture]; ok {
				teamID = f.TeamA
				if h.WasHome {
					teamID = f.TeamH
				}
			}

			m := &domain.MatchStatRaw{
				PlayerID:         ph.PlayerID,
				Season:           d.Season,
				Gameweek:         h.Round,
				MatchID:          h.Fixture,
				TeamID:           teamID,
				OpponentTeamID:   h.OpponentTeam,
				WasHome:          h.WasHome,
				KickoffMs:        kickoff,
				Position:         pos,
				Minutes:          h.Minutes,
				TotalPoints:      h.TotalPoints,
				GoalsScored:      h.GoalsScored,
				Assists:          h.Assists,
				CleanSheets:      h.CleanSheets,
				GoalsConceded:    h.GoalsConceded,
				OwnGoals:         h.OwnGoals,
				PenaltiesSaved:   h.PenaltiesSaved,
				PenaltiesMissed:  h.PenaltiesMissed,
				YellowCards:      h.YellowCards,
				RedCards:         h.RedCards,
				Saves:            h.Saves,
				Bonus:            h.Bonus,
				BPS:              h.BPS,
				Influence:        h.Influence.Float(),
				Creativity:       h.Creativity.Float(),
				Threat:           h.Threat.Float(),
				ICTIndex:         h.ICTIndex.Float(),
				Value:            h.Value,
				TransfersBalance: h.TransfersBalance,
				Selected:         h.Selected,
				TransfersIn:      h.TransfersIn,
				TransfersOut:     h.TransfersOut,
			}
			if h.ExpectedGoals != nil {
				v := h.ExpectedGoals.Float()
				m.XG = &v
			}
			if h.ExpectedAssists != nil {
				v := h.ExpectedAssists.Float()
				m.XA = &v
			}
			out = append(out, m)
		}
	}

	SortMatchStats(out)
	return out, nil
}

// TeamStats aggregates player rows into one line per (team, match): goals,
// points, BPS and xG are summed, clean sheet and goals conceded take the max
// over players. Fixture scores override the player sums when present, and
// xGA is the opponent's summed xG for the same match.
func TeamStats(matches []*domain.MatchStatRaw, fixtures map[int]Fixture) []*domain.TeamMatchStat {
	type key struct{ team, match int }
	lines := make(map[key]*domain.TeamMatchStat)
	var order []key

	for _, m := range matches {
		k := key{m.TeamID, m.MatchID}
		t, ok := lines[k]
		if !ok {
			t = &domain.TeamMatchStat{
				TeamID:         m.TeamID,
				Season:         m.Season,
				Gameweek:       m.Gameweek,
				MatchID:        m.MatchID,
				OpponentTeamID: m.OpponentTeamID,
				WasHome:        m.WasHome,
			}
			lines[k] = t
			order = append(order, k)
		}
		t.GoalsScored += m.GoalsScored
		t.TotalPoints += m.TotalPoints
		t.BPS += m.BPS
		if m.CleanSheets > 0 {
			t.CleanSheet = true
		}
		if m.GoalsConceded > t.GoalsConceded {
			t.GoalsConceded = m.GoalsConceded
		}
		if m.XG != nil {
			sum := *m.XG
			if t.XG != nil {
				sum += *t.XG
			}
			t.XG = &sum
		}
	}

	out := make([]*domain.TeamMatchStat, 0, len(order))
	for _, k := range order {
		t := lines[k]
		if f, ok := fixtures[t.MatchID]; ok && f.TeamHScore != nil && f.TeamAScore != nil {
			t.GoalsScored, t.GoalsConceded = *f.TeamAScore, *f.TeamHScore
			if t.WasHome {
				t.GoalsScored, t.GoalsConceded = *f.TeamHScore, *f.TeamAScore
			}
			t.CleanSheet = t.GoalsConceded == 0
		}
		if opp, ok := lines[key{t.OpponentTeamID, t.MatchID}]; ok && opp.XG != nil {
			xga := *opp.XG
			t.XGA = &xga
		}
		out = append(out, t)
	}

	SortTeamStats(out)
	return out
}

// availability turns bootstrap element status into snapshots for the next
// gameweek. Returns nil when the season has no next gameweek.
func availability(d *Dump) []*domain.PlayerAvailability {
	next := 0
	for _, e := range d.Bootstrap.Events {
		if e.IsNext {
			next = e.ID
			break
		}
	}
	if next == 0 {
		return nil
	}

	out := make([]*domain.PlayerAvailability, 0, len(d.Bootstrap.Elements))
	for _, el := range d.Bootstrap.Elements {
		status := domain.AvailabilityStatus(el.Status)
		if status == "" {
			status = domain.StatusAvailable
		}
		a := &domain.PlayerAvailability{
			PlayerID:     el.ID,
			Season:       d.Season,
			Gameweek:     next,
			Status:       status,
			News:         el.News,
			SnapshotAtMs: d.SnapshotAt.UnixMilli(),
		}
		if el.ChanceOfPlayingNextRound != nil {
			chance := *el.ChanceOfPlayingNextRound
			a.ChanceOfPlaying = &chance
		}
		out = append(out, a)
	}

	SortAvailability(out)
	return out
}

// SeasonForDate returns the FPL season label ("2024-25") containing t.
// Seasons roll over in August.
func SeasonForDate(t time.Time) string {
	year := t.Year()
	if t.Month() < time.August {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

package panel

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// Builder turns a season's raw rows into a Panel at StageBuilt.
type Builder struct {
	logger logrus.FieldLogger
}

// NewBuilder creates a panel builder.
func NewBuilder(logger logrus.FieldLogger) *Builder {
	return &Builder{logger: logger.WithField("phase", "panel")}
}

// Build produces one row per player per gameweek in the player's active range
// [first raw gameweek, last raw gameweek], widened across adjacent gameweeks
// of the season calendar in which the player's team has no fixture. Blank
// gameweeks are emitted with zero observed minutes. Gameweeks where the team had a fixture but the player
// has no raw row are emitted as RowMissing and reported in Panel.Missing.
//
// Returns *domain.SchemaError when a raw row's (season, gameweek, team_id,
// match_id) has no fixture, a raw key is duplicated, or a row belongs to
// another season. Build is deterministic: identical input yields identical rows.
func (b *Builder) Build(raw *storage.SeasonRaw) (*Panel, error) {
	season := raw.Season
	log := b.logger.WithField("season", season)

	matches, err := ApplyCorrections(raw.MatchStats, raw.Corrections)
	if err != nil {
		return nil, err
	}
	sortMatches(matches)

	p := &Panel{
		Season:       season,
		lines:        make(map[domain.PanelKey]*domain.GameweekLine),
		teamMatches:  make(map[int][]*domain.TeamMatchStat),
		fixtures:     make(map[teamGameweek][]*domain.Fixture),
		availability: make(map[domain.PanelKey]*domain.PlayerAvailability),
	}

	fixtureKeys := make(map[domain.FixtureKey]struct{}, len(raw.Fixtures))
	for _, f := range raw.Fixtures {
		if f.Season != season {
			continue
		}
		fixtureKeys[f.Key()] = struct{}{}
		k := teamGameweek{teamID: f.TeamID, gameweek: f.Gameweek}
		p.fixtures[k] = append(p.fixtures[k], f)
	}
	calendar := gameweekRange{}
	for k, fs := range p.fixtures {
		sortFixtures(fs)
		calendar.add(k.gameweek)
	}

	// Validate raw rows and group them by player.
	seen := make(map[domain.MatchStatKey]struct{}, len(matches))
	var playerOrder []int
	byPlayer := make(map[int][]*domain.MatchStatRaw)
	for _, m := range matches {
		key := domain.PanelKey{PlayerID: m.PlayerID, Season: m.Season, Gameweek: m.Gameweek}
		if m.Season != season {
			return nil, &domain.SchemaError{Key: key, Detail: fmt.Sprintf("raw row belongs to season %q, building %q", m.Season, season)}
		}
		if _, dup := seen[m.Key()]; dup {
			return nil, &domain.SchemaError{Key: key, Detail: fmt.Sprintf("duplicate raw row for match %d", m.MatchID)}
		}
		seen[m.Key()] = struct{}{}

		fk := domain.FixtureKey{Season: season, Gameweek: m.Gameweek, TeamID: m.TeamID, MatchID: m.MatchID}
		if _, ok := fixtureKeys[fk]; !ok {
			return nil, &domain.SchemaError{Key: key, Detail: fmt.Sprintf("no fixture for team %d match %d", m.TeamID, m.MatchID)}
		}

		if _, ok := byPlayer[m.PlayerID]; !ok {
			playerOrder = append(playerOrder, m.PlayerID)
		}
		byPlayer[m.PlayerID] = append(byPlayer[m.PlayerID], m)
	}

	for _, playerID := range playerOrder {
		p.buildPlayer(playerID, byPlayer[playerID], calendar)
	}
	SortRows(p.Rows)

	for _, t := range raw.TeamStats {
		if t.Season != season {
			continue
		}
		p.teamMatches[t.TeamID] = append(p.teamMatches[t.TeamID], t)
	}
	for _, ms := range p.teamMatches {
		sortTeamMatches(ms)
	}

	for _, a := range raw.Availability {
		if a.Season != season {
			continue
		}
		p.availability[domain.PanelKey{PlayerID: a.PlayerID, Season: season, Gameweek: a.Gameweek}] = a
	}

	for _, r := range p.Rows {
		if r.Gameweek > p.LastGameweek {
			p.LastGameweek = r.Gameweek
		}
	}

	log.WithFields(logrus.Fields{
		"players": len(playerOrder),
		"rows":    len(p.Rows),
		"missing": len(p.Missing),
	}).Info("built panel")
	for _, m := range p.Missing {
		log.WithFields(logrus.Fields{"player_id": m.Key.PlayerID, "gameweek": m.Key.Gameweek}).Debug(m.Detail)
	}

	return p, nil
}

// gameweekRange is the span of gameweeks that carry at least one fixture.
type gameweekRange struct {
	first, last int
}

func (r *gameweekRange) add(gw int) {
	if r.first == 0 || gw < r.first {
		r.first = gw
	}
	if gw > r.last {
		r.last = gw
	}
}

// buildPlayer emits rows for one player. matches are sorted by (gameweek, kickoff, match_id).
func (p *Panel) buildPlayer(playerID int, matches []*domain.MatchStatRaw, calendar gameweekRange) {
	byGW := make(map[int][]*domain.MatchStatRaw)
	first, last := matches[0].Gameweek, matches[0].Gameweek
	for _, m := range matches {
		byGW[m.Gameweek] = append(byGW[m.Gameweek], m)
		if m.Gameweek < first {
			first = m.Gameweek
		}
		if m.Gameweek > last {
			last = m.Gameweek
		}
	}

	// Blanks at either end of the range belong to the team of the nearest
	// raw row.
	lastMatch := matches[len(matches)-1]
	for last < calendar.last && len(p.Fixtures(lastMatch.TeamID, last+1)) == 0 {
		last++
	}
	for first > calendar.first && len(p.Fixtures(matches[0].TeamID, first-1)) == 0 {
		first--
	}

	teamID := matches[0].TeamID
	position := matches[0].Position
	price := matches[0].Price()

	for gw := first; gw <= last; gw++ {
		key := domain.PanelKey{PlayerID: playerID, Season: p.Season, Gameweek: gw}
		played := byGW[gw]

		if len(played) > 0 {
			teamID = played[0].TeamID
			position = played[0].Position
			price = played[len(played)-1].Price()
		}

		fixtures := p.Fixtures(teamID, gw)
		line := &domain.GameweekLine{PlayerID: playerID, Season: p.Season, Gameweek: gw}

		switch {
		case len(played) > 0:
			line.Status = domain.RowPlayed
			sumMatches(line, played)
		case len(fixtures) == 0:
			line.Status = domain.RowBlank
		default:
			line.Status = domain.RowMissing
			p.Missing = append(p.Missing, &domain.MissingDataError{
				Key:    key,
				Detail: fmt.Sprintf("team %d had %d fixture(s) but player has no raw row", teamID, len(fixtures)),
			})
		}
		p.lines[key] = line

		row := &domain.PanelRow{
			PlayerID:        playerID,
			Season:          p.Season,
			Gameweek:        gw,
			Position:        position,
			TeamID:          teamID,
			Price:           price,
			Status:          line.Status,
			FixtureCount:    len(fixtures),
			IsBlank:         len(fixtures) == 0,
			IsDouble:        len(fixtures) > 1,
			ObservedMinutes: line.Minutes,
			ObservedPoints:  line.Points,
			Stage:           domain.StageBuilt,
		}
		if len(fixtures) > 0 {
			setFixtureContext(row, fixtures)
		}

		p.Rows = append(p.Rows, row)
	}
}

// setFixtureContext fills opponent, venue and rest from the first fixture by
// kickoff and difficulty as the mean over all fixtures.
func setFixtureContext(row *domain.PanelRow, fixtures []*domain.Fixture) {
	firstFixture := fixtures[0]

	opponent := firstFixture.OpponentTeamID
	isHome := firstFixture.IsHome
	row.OpponentTeamID = &opponent
	row.IsHome = &isHome

	var total float64
	for _, f := range fixtures {
		total += float64(f.Difficulty)
	}
	difficulty := total / float64(len(fixtures))
	row.FixtureDifficulty = &difficulty

	if firstFixture.DaysRest != nil {
		rest := *firstFixture.DaysRest
		row.DaysRest = &rest
	}
}

// sumMatches adds every match of a gameweek into line.
// Advanced stats stay nil unless at least one match reports them.
func sumMatches(line *domain.GameweekLine, matches []*domain.MatchStatRaw) {
	for _, m := range matches {
		line.Matches++
		line.Minutes += m.Minutes
		line.Points += m.TotalPoints
		line.Goals += m.GoalsScored
		line.Assists += m.Assists
		line.Bonus += m.Bonus
		line.BPS += m.BPS
		line.RedCards += m.RedCards

		line.XG = addFloat(line.XG, m.XG)
		line.XA = addFloat(line.XA, m.XA)
		line.Shots = addInt(line.Shots, m.Shots)
		line.KeyPasses = addInt(line.KeyPasses, m.KeyPasses)
	}
}

func addFloat(acc, v *float64) *float64 {
	if v == nil {
		return acc
	}
	sum := *v
	if acc != nil {
		sum += *acc
	}
	return &sum
}

func addInt(acc, v *int) *int {
	if v == nil {
		return acc
	}
	sum := *v
	if acc != nil {
		sum += *acc
	}
	return &sum
}

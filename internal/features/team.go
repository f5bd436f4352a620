package features

import (
	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/panel"
)

// TeamWindow averages a team's matches played in gameweeks [t-n, t-1].
// Each match is one sample, so a double gameweek contributes two.
func TeamWindow(p *panel.Panel, key domain.PanelKey, teamID, n int, component string) (domain.TeamForm, error) {
	var tf domain.TeamForm
	from, to := windowRange(key.Gameweek, n)

	var matches []*domain.TeamMatchStat
	for _, m := range p.TeamMatches(teamID) {
		if m.Gameweek >= from && m.Gameweek <= to {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return tf, nil
	}

	var gws []int
	all := make([]int, len(matches))
	for i, m := range matches {
		all[i] = m.Gameweek
		if len(gws) == 0 || gws[len(gws)-1] != m.Gameweek {
			gws = append(gws, m.Gameweek)
		}
	}
	if err := checkBefore(key, component, all); err != nil {
		return tf, err
	}

	tf.SampleSize = len(matches)
	tf.Gameweeks = gws
	tf.GoalsScored = meanOf(matches, func(m *domain.TeamMatchStat) (float64, bool) { return float64(m.GoalsScored), true })
	tf.GoalsConceded = meanOf(matches, func(m *domain.TeamMatchStat) (float64, bool) { return float64(m.GoalsConceded), true })
	tf.CleanSheetRate = meanOf(matches, func(m *domain.TeamMatchStat) (float64, bool) {
		if m.CleanSheet {
			return 1, true
		}
		return 0, true
	})
	tf.XG = meanOf(matches, func(m *domain.TeamMatchStat) (float64, bool) {
		if m.XG == nil {
			return 0, false
		}
		return *m.XG, true
	})
	tf.XGA = meanOf(matches, func(m *domain.TeamMatchStat) (float64, bool) {
		if m.XGA == nil {
			return 0, false
		}
		return *m.XGA, true
	})

	return tf, nil
}

package panel

import (
	"fmt"

	"fpl-points-lab/internal/domain"
)

var playerStats = []string{"minutes", "points", "goals", "assists", "bonus", "bps", "xg", "xa", "shots", "key_passes"}

var teamStats = []string{"goals_scored", "goals_conceded", "xg", "xga", "clean_sheet_rate"}

// FeatureColumns returns the names of the flat feature vector for the given
// window sizes. Keys, observed values and targets are not features.
func FeatureColumns(windows []int) []string {
	cols := []string{
		"price",
		"is_home",
		"fixture_difficulty",
		"days_rest",
		"fixture_count",
		"is_blank",
		"is_double",
	}

	for _, w := range windows {
		for _, s := range playerStats {
			cols = append(cols, fmt.Sprintf("player_%s_w%d", s, w))
		}
		cols = append(cols, fmt.Sprintf("player_sample_w%d", w))
		for _, prefix := range []string{"team", "opp"} {
			for _, s := range teamStats {
				cols = append(cols, fmt.Sprintf("%s_%s_w%d", prefix, s, w))
			}
			cols = append(cols, fmt.Sprintf("%s_sample_w%d", prefix, w))
		}
	}

	return append(cols,
		"risk_known",
		"risk_injured",
		"risk_suspended",
		"risk_doubtful",
		"risk_unavailable",
		"chance_of_playing",
		"red_card_last_gw",
	)
}

// FeatureVector returns the row's features in FeatureColumns order.
// Null features are nil. A window size missing from the row yields nils.
func FeatureVector(r *domain.PanelRow, windows []int) []*float64 {
	v := []*float64{
		num(r.Price),
		boolPtr(r.IsHome),
		r.FixtureDifficulty,
		r.DaysRest,
		num(float64(r.FixtureCount)),
		flag(r.IsBlank),
		flag(r.IsDouble),
	}

	for _, w := range windows {
		wf := r.Window(w)
		if wf == nil {
			v = append(v, make([]*float64, len(playerStats)+1+2*(len(teamStats)+1))...)
			continue
		}
		pf := wf.Player
		v = append(v, pf.Minutes, pf.Points, pf.Goals, pf.Assists, pf.Bonus, pf.BPS, pf.XG, pf.XA, pf.Shots, pf.KeyPasses)
		v = append(v, num(float64(pf.SampleSize)))
		for _, tf := range []domain.TeamForm{wf.Team, wf.Opponent} {
			v = append(v, tf.GoalsScored, tf.GoalsConceded, tf.XG, tf.XGA, tf.CleanSheetRate)
			v = append(v, num(float64(tf.SampleSize)))
		}
	}

	var chance *float64
	if r.Risk.ChanceOfPlaying != nil {
		chance = num(float64(*r.Risk.ChanceOfPlaying))
	}

	return append(v,
		flag(r.Risk.Known),
		flag(r.Risk.Injured),
		flag(r.Risk.Suspended),
		flag(r.Risk.Doubtful),
		flag(r.Risk.Unavailable),
		chance,
		boolPtr(r.Risk.RedCardLastGW),
	)
}

func num(v float64) *float64 {
	return &v
}

func flag(b bool) *float64 {
	if b {
		return num(1)
	}
	return num(0)
}

func boolPtr(b *bool) *float64 {
	if b == nil {
		return nil
	}
	return flag(*b)
}

package features

import (
	"gonum.org/v1/gonum/stat"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/panel"
)

// PlayerWindow aggregates the player's gameweek lines in [t-n, t-1].
// Missing-data gameweeks are excluded. Blank gameweeks occupy a slot and
// contribute zeros. Double gameweeks are already summed per line.
func PlayerWindow(p *panel.Panel, key domain.PanelKey, n int) (domain.PlayerForm, error) {
	from, to := windowRange(key.Gameweek, n)

	var lines []*domain.GameweekLine
	for gw := from; gw <= to; gw++ {
		line := p.Line(key.PlayerID, gw)
		if line == nil || line.Status == domain.RowMissing {
			continue
		}
		lines = append(lines, line)
	}
	return aggregatePlayer(key, lines)
}

func aggregatePlayer(key domain.PanelKey, lines []*domain.GameweekLine) (domain.PlayerForm, error) {
	var pf domain.PlayerForm
	if len(lines) == 0 {
		return pf, nil
	}

	gws := make([]int, len(lines))
	for i, l := range lines {
		gws[i] = l.Gameweek
	}
	if err := checkBefore(key, "player_form", gws); err != nil {
		return pf, err
	}

	pf.SampleSize = len(lines)
	pf.Gameweeks = gws

	pf.Minutes = meanOf(lines, func(l *domain.GameweekLine) (float64, bool) { return float64(l.Minutes), true })
	pf.Points = meanOf(lines, func(l *domain.GameweekLine) (float64, bool) { return float64(l.Points), true })
	pf.Goals = meanOf(lines, func(l *domain.GameweekLine) (float64, bool) { return float64(l.Goals), true })
	pf.Assists = meanOf(lines, func(l *domain.GameweekLine) (float64, bool) { return float64(l.Assists), true })
	pf.Bonus = meanOf(lines, func(l *domain.GameweekLine) (float64, bool) { return float64(l.Bonus), true })
	pf.BPS = meanOf(lines, func(l *domain.GameweekLine) (float64, bool) { return float64(l.BPS), true })

	pf.XG = meanOf(lines, advancedFloat(func(l *domain.GameweekLine) *float64 { return l.XG }))
	pf.XA = meanOf(lines, advancedFloat(func(l *domain.GameweekLine) *float64 { return l.XA }))
	pf.Shots = meanOf(lines, advancedInt(func(l *domain.GameweekLine) *int { return l.Shots }))
	pf.KeyPasses = meanOf(lines, advancedInt(func(l *domain.GameweekLine) *int { return l.KeyPasses }))

	return pf, nil
}

// advancedFloat reads a nullable stat. Blank gameweeks count as zero;
// played gameweeks without provider data are skipped.
func advancedFloat(get func(*domain.GameweekLine) *float64) func(*domain.GameweekLine) (float64, bool) {
	return func(l *domain.GameweekLine) (float64, bool) {
		if l.Status == domain.RowBlank {
			return 0, true
		}
		v := get(l)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

func advancedInt(get func(*domain.GameweekLine) *int) func(*domain.GameweekLine) (float64, bool) {
	return func(l *domain.GameweekLine) (float64, bool) {
		if l.Status == domain.RowBlank {
			return 0, true
		}
		v := get(l)
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	}
}

// meanOf returns the mean of the defined values, or nil if none are defined.
func meanOf[T any](items []T, value func(T) (float64, bool)) *float64 {
	xs := make([]float64, 0, len(items))
	for _, it := range items {
		if v, ok := value(it); ok {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return nil
	}
	m := stat.Mean(xs, nil)
	return &m
}

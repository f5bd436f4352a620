package model

import (
	"fmt"

	"fpl-points-lab/internal/domain"
)

// doubtfulFactor scales expected minutes for doubtful players without a
// reported chance of playing.
const doubtfulFactor = 0.5

// TwoStage predicts expected minutes first, then points from minutes and a
// per-position points-per-90 rate learned in training.
type TwoStage struct {
	window      int
	minutes     *positionMeans
	pointsPer90 map[domain.Position]float64
	globalPer90 float64
	fitted      bool
}

// NewTwoStage creates a two-stage predictor over the given window size.
func NewTwoStage(window int) *TwoStage {
	return &TwoStage{window: window}
}

// Name returns the predictor name.
func (m *TwoStage) Name() string { return domain.ModelTwoStage }

// Fit learns per-position minutes means and points-per-90 rates.
func (m *TwoStage) Fit(train []*domain.PanelRow) error {
	m.minutes = newPositionMeans()
	m.pointsPer90 = make(map[domain.Position]float64)

	points := make(map[domain.Position]float64)
	minutes := make(map[domain.Position]float64)
	var allPoints, allMinutes float64

	for _, r := range train {
		if r.Target == nil {
			continue
		}
		m.minutes.add(r.Position, float64(r.Target.Minutes))
		if r.Target.Minutes == 0 {
			continue
		}
		points[r.Position] += float64(r.Target.Points)
		minutes[r.Position] += float64(r.Target.Minutes)
		allPoints += float64(r.Target.Points)
		allMinutes += float64(r.Target.Minutes)
	}

	for pos, mins := range minutes {
		m.pointsPer90[pos] = points[pos] / mins * 90
	}
	if allMinutes > 0 {
		m.globalPer90 = allPoints / allMinutes * 90
	}
	m.fitted = true
	return nil
}

// Predict returns one prediction per row with expected minutes.
func (m *TwoStage) Predict(rows []*domain.PanelRow) ([]*domain.Prediction, error) {
	if !m.fitted {
		return nil, fmt.Errorf("%s: predict before fit", m.Name())
	}

	out := make([]*domain.Prediction, 0, len(rows))
	for _, r := range rows {
		expMinutes := m.minutes.get(r.Position)
		if w := r.Window(m.window); w != nil && w.Player.Minutes != nil {
			expMinutes = *w.Player.Minutes
		}
		expMinutes *= availabilityFactor(r.Risk)

		per90, ok := m.pointsPer90[r.Position]
		if !ok {
			per90 = m.globalPer90
		}
		points := expMinutes / 90 * per90

		out = append(out, prediction(r, m.Name(), points, &expMinutes))
	}
	return out, nil
}

// availabilityFactor scales expected minutes by the pre-deadline status.
func availabilityFactor(risk domain.RiskFlags) float64 {
	switch {
	case risk.Injured || risk.Suspended || risk.Unavailable:
		return 0
	case risk.ChanceOfPlaying != nil:
		return float64(*risk.ChanceOfPlaying) / 100
	case risk.Doubtful:
		return doubtfulFactor
	default:
		return 1
	}
}

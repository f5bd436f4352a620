// Package model defines the predictor boundary used by the backtest and two
// reference predictors.
package model

import (
	"fmt"
	"sort"

	"fpl-points-lab/internal/domain"
)

// Predictor fits on training rows and predicts next-gameweek outcomes.
// A Predictor is used by one goroutine at a time.
type Predictor interface {
	Name() string
	Fit(train []*domain.PanelRow) error
	Predict(rows []*domain.PanelRow) ([]*domain.Prediction, error)
}

// Factory creates a fresh, unfitted predictor.
type Factory func() Predictor

// Names lists the built-in predictors.
func Names() []string {
	return []string{domain.ModelForm, domain.ModelTwoStage}
}

// New returns a factory for a built-in predictor reading rolling features of
// the largest window in windows.
func New(name string, windows []int) (Factory, error) {
	if len(windows) == 0 {
		return nil, &domain.ConfigError{Field: "windows", Detail: "at least one window required"}
	}
	ws := append([]int(nil), windows...)
	sort.Ints(ws)
	window := ws[len(ws)-1]

	switch name {
	case domain.ModelForm:
		return func() Predictor { return NewForm(window) }, nil
	case domain.ModelTwoStage:
		return func() Predictor { return NewTwoStage(window) }, nil
	default:
		return nil, &domain.ConfigError{Field: "models", Detail: fmt.Sprintf("unknown model %q", name)}
	}
}

// positionMeans accumulates a per-position and global mean.
type positionMeans struct {
	sum   map[domain.Position]float64
	n     map[domain.Position]int
	total float64
	count int
}

func newPositionMeans() *positionMeans {
	return &positionMeans{sum: make(map[domain.Position]float64), n: make(map[domain.Position]int)}
}

func (m *positionMeans) add(pos domain.Position, v float64) {
	m.sum[pos] += v
	m.n[pos]++
	m.total += v
	m.count++
}

// get returns the position mean, falling back to the global mean, then 0.
func (m *positionMeans) get(pos domain.Position) float64 {
	if n := m.n[pos]; n > 0 {
		return m.sum[pos] / float64(n)
	}
	if m.count > 0 {
		return m.total / float64(m.count)
	}
	return 0
}

func prediction(r *domain.PanelRow, name string, points float64, minutes *float64) *domain.Prediction {
	return &domain.Prediction{
		PlayerID: r.PlayerID,
		Season:   r.Season,
		Gameweek: r.Gameweek,
		Model:    name,
		Points:   points,
		Minutes:  minutes,
	}
}

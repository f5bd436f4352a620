package model

import (
	"fmt"

	"fpl-points-lab/internal/domain"
)

// Form predicts next points as the player's rolling points mean, falling
// back to the training mean of the player's position.
type Form struct {
	window   int
	fallback *positionMeans
	fitted   bool
}

// NewForm creates a form predictor over the given window size.
func NewForm(window int) *Form {
	return &Form{window: window}
}

// Name returns the predictor name.
func (f *Form) Name() string { return domain.ModelForm }

// Fit learns per-position target means.
func (f *Form) Fit(train []*domain.PanelRow) error {
	f.fallback = newPositionMeans()
	for _, r := range train {
		if r.Target == nil {
			continue
		}
		f.fallback.add(r.Position, float64(r.Target.Points))
	}
	f.fitted = true
	return nil
}

// Predict returns one prediction per row without minutes.
func (f *Form) Predict(rows []*domain.PanelRow) ([]*domain.Prediction, error) {
	if !f.fitted {
		return nil, fmt.Errorf("%s: predict before fit", f.Name())
	}

	out := make([]*domain.Prediction, 0, len(rows))
	for _, r := range rows {
		points := f.fallback.get(r.Position)
		if w := r.Window(f.window); w != nil && w.Player.Points != nil {
			points = *w.Player.Points
		}
		out = append(out, prediction(r, f.Name(), points, nil))
	}
	return out, nil
}

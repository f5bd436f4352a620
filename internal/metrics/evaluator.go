package metrics

import (
	"fmt"

	"fpl-points-lab/internal/domain"
)

// Evaluate scores predictions against the targets of the evaluable test rows.
// Every row must have a target and a prediction with the same key.
// Minutes metrics are set only when every prediction carries minutes.
func Evaluate(rows []*domain.PanelRow, predictions []*domain.Prediction) (*domain.SplitMetrics, error) {
	byKey := make(map[domain.PanelKey]*domain.Prediction, len(predictions))
	for _, p := range predictions {
		byKey[p.Key()] = p
	}

	n := len(rows)
	actual := make([]float64, 0, n)
	predicted := make([]float64, 0, n)
	actualMin := make([]float64, 0, n)
	predictedMin := make([]float64, 0, n)
	withMinutes := n > 0

	for _, r := range rows {
		if r.Target == nil {
			return nil, fmt.Errorf("row %d/%s/%d has no target", r.PlayerID, r.Season, r.Gameweek)
		}
		p, ok := byKey[r.Key()]
		if !ok {
			return nil, fmt.Errorf("no prediction for row %d/%s/%d", r.PlayerID, r.Season, r.Gameweek)
		}
		actual = append(actual, float64(r.Target.Points))
		predicted = append(predicted, p.Points)

		if p.Minutes == nil {
			withMinutes = false
			continue
		}
		actualMin = append(actualMin, float64(r.Target.Minutes))
		predictedMin = append(predictedMin, *p.Minutes)
	}

	m := &domain.SplitMetrics{
		TestRows: n,
		MAE:      computeMAE(actual, predicted),
		RMSE:     computeRMSE(actual, predicted),
		Spearman: computeSpearman(actual, predicted),
	}
	if withMinutes {
		mae := computeMAE(actualMin, predictedMin)
		cal := computeCalibration(actualMin, predictedMin)
		m.MinutesMAE = &mae
		m.MinutesCalibration = &cal
	}
	return m, nil
}

// Package backtest runs walk-forward evaluation of predictors over panel splits.
package backtest

import (
	"fmt"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/metrics"
	"fpl-points-lab/internal/model"
	"fpl-points-lab/internal/split"
)

// SplitResult holds one predictor's output on one split.
type SplitResult struct {
	Metrics     *domain.SplitMetrics
	Predictions []*domain.Prediction
}

// EvaluateSplit fits predictor on the split's trainable rows, predicts the
// evaluable test rows and scores them.
func EvaluateSplit(runID string, sp *split.Split, predictor model.Predictor) (*SplitResult, error) {
	train := sp.Trainable()
	test := sp.Evaluable()

	if err := predictor.Fit(train); err != nil {
		return nil, fmt.Errorf("fit %s cutoff %d: %w", predictor.Name(), sp.Cutoff, err)
	}

	preds, err := predictor.Predict(test)
	if err != nil {
		return nil, fmt.Errorf("predict %s cutoff %d: %w", predictor.Name(), sp.Cutoff, err)
	}
	if len(preds) != len(test) {
		return nil, fmt.Errorf("predict %s cutoff %d: %d predictions for %d rows", predictor.Name(), sp.Cutoff, len(preds), len(test))
	}

	m, err := metrics.Evaluate(test, preds)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s cutoff %d: %w", predictor.Name(), sp.Cutoff, err)
	}
	m.RunID = runID
	m.Season = sp.Season
	m.Model = predictor.Name()
	m.Cutoff = sp.Cutoff
	m.TestGameweek = sp.TestGameweek
	m.TrainRows = len(train)

	return &SplitResult{Metrics: m, Predictions: preds}, nil
}

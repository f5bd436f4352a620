package backtest

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/model"
	"fpl-points-lab/internal/split"
)

// Results holds backtest output ordered by (model, cutoff).
type Results struct {
	RunID       string
	Season      string
	Splits      []*domain.SplitMetrics
	Predictions []*domain.Prediction
	Duration    time.Duration
}

// Runner evaluates every (model, split) pair with a bounded worker group.
type Runner struct {
	workers int
	logger  logrus.FieldLogger
}

// NewRunner creates a new backtest runner. workers < 1 runs sequentially.
func NewRunner(workers int, logger logrus.FieldLogger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		workers: workers,
		logger:  logger.WithField("phase", "backtest"),
	}
}

// Run evaluates each model factory on each split. Every job writes only its
// own result slot, so output order does not depend on scheduling.
// The first error cancels the remaining jobs.
func (r *Runner) Run(ctx context.Context, runID string, splits []*split.Split, models []model.Factory) (*Results, error) {
	start := time.Now()
	slots := make([]*SplitResult, len(models)*len(splits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, factory := range models {
		for j, sp := range splits {
			slot := i*len(splits) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := EvaluateSplit(runID, sp, factory())
				if err != nil {
					return err
				}
				slots[slot] = res

				r.logger.WithFields(logrus.Fields{
					"run_id":    runID,
					"model":     res.Metrics.Model,
					"cutoff":    sp.Cutoff,
					"test_rows": res.Metrics.TestRows,
					"mae":       res.Metrics.MAE,
				}).Debug("evaluated split")
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := &Results{RunID: runID, Duration: time.Since(start)}
	if len(splits) > 0 {
		results.Season = splits[0].Season
	}
	for _, res := range slots {
		results.Splits = append(results.Splits, res.Metrics)
		results.Predictions = append(results.Predictions, res.Predictions...)
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"season":   results.Season,
		"models":   len(models),
		"splits":   len(splits),
		"duration": results.Duration,
	}).Info("backtest complete")
	return results, nil
}

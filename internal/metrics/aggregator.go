package metrics

import (
	"context"
	"errors"
	"math"
	"sort"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// ErrNoSplits is returned when no split results are available for aggregation.
var ErrNoSplits = errors.New("no split results available for aggregation")

// Aggregator computes season aggregates from split results.
type Aggregator struct {
	splitStore storage.SplitMetricsStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(splitStore storage.SplitMetricsStore) *Aggregator {
	return &Aggregator{splitStore: splitStore}
}

// Aggregate combines one model's split results. MAE and RMSE are pooled over
// all test rows; Spearman is the mean over splits where it is defined.
// Returns ErrNoSplits if splits is empty.
func Aggregate(splits []*domain.SplitMetrics) (*domain.SeasonMetrics, error) {
	if len(splits) == 0 {
		return nil, ErrNoSplits
	}

	agg := &domain.SeasonMetrics{
		RunID:  splits[0].RunID,
		Season: splits[0].Season,
		Model:  splits[0].Model,
		Splits: len(splits),
	}

	var (
		absSum, sqSum        float64
		rhoSum               float64
		rhoCount             int
		minAbsSum, minCalSum float64
		minRows              int
		allMinutes           = true
	)
	for _, s := range splits {
		n := float64(s.TestRows)
		agg.TestRows += s.TestRows
		absSum += s.MAE * n
		sqSum += s.RMSE * s.RMSE * n
		if s.Spearman != nil {
			rhoSum += *s.Spearman
			rhoCount++
		}
		if s.MinutesMAE == nil || s.MinutesCalibration == nil {
			if s.TestRows > 0 {
				allMinutes = false
			}
			continue
		}
		minAbsSum += *s.MinutesMAE * n
		minCalSum += *s.MinutesCalibration * n
		minRows += s.TestRows
	}

	if agg.TestRows > 0 {
		total := float64(agg.TestRows)
		agg.MAE = absSum / total
		agg.RMSE = math.Sqrt(sqSum / total)
	}
	if rhoCount > 0 {
		rho := rhoSum / float64(rhoCount)
		agg.Spearman = &rho
	}
	if allMinutes && minRows > 0 {
		mae := minAbsSum / float64(minRows)
		cal := minCalSum / float64(minRows)
		agg.MinutesMAE = &mae
		agg.MinutesCalibration = &cal
	}

	return agg, nil
}

// AggregateByModel groups splits by model and aggregates each group.
// Results are sorted by model name.
func AggregateByModel(splits []*domain.SplitMetrics) ([]*domain.SeasonMetrics, error) {
	if len(splits) == 0 {
		return nil, ErrNoSplits
	}

	byModel := make(map[string][]*domain.SplitMetrics)
	for _, s := range splits {
		byModel[s.Model] = append(byModel[s.Model], s)
	}

	models := make([]string, 0, len(byModel))
	for m := range byModel {
		models = append(models, m)
	}
	sort.Strings(models)

	out := make([]*domain.SeasonMetrics, 0, len(models))
	for _, m := range models {
		agg, err := Aggregate(byModel[m])
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

// StoreAndAggregate persists split results and returns per-model aggregates.
// Returns storage.ErrDuplicateKey if any split already exists (append-only).
func (a *Aggregator) StoreAndAggregate(ctx context.Context, splits []*domain.SplitMetrics) ([]*domain.SeasonMetrics, error) {
	if err := a.splitStore.InsertBulk(ctx, splits); err != nil {
		return nil, err
	}
	return AggregateByModel(splits)
}

// LoadAggregates reads a run's split results back and aggregates them per model.
func (a *Aggregator) LoadAggregates(ctx context.Context, runID string) ([]*domain.SeasonMetrics, error) {
	splits, err := a.splitStore.GetByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return AggregateByModel(splits)
}

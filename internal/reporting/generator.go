package reporting

import (
	"context"
	"sort"
	"time"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/metrics"
	"fpl-points-lab/internal/storage"
)

// Generator produces run reports from stored split results and the panel.
type Generator struct {
	splitStore storage.SplitMetricsStore
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(splitStore storage.SplitMetricsStore) *Generator {
	return &Generator{
		splitStore: splitStore,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for a run. Data quality, audit and
// reproducibility sections are left for the caller to fill.
func (g *Generator) Generate(ctx context.Context, runID, season, fingerprint string, windows []int, rows []*domain.PanelRow) (*Report, error) {
	splits, err := g.splitStore.GetByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:      g.now(),
		RunID:            runID,
		Season:           season,
		PanelFingerprint: fingerprint,
		Windows:          append([]int(nil), windows...),
		DataSummary:      generateDataSummary(rows),
		SplitMetrics:     generateSplitMetrics(splits),
	}

	if len(splits) > 0 {
		aggs, err := metrics.AggregateByModel(splits)
		if err != nil {
			return nil, err
		}
		report.ModelMetrics = generateModelMetrics(aggs)
	}

	return report, nil
}

// generateDataSummary counts panel rows by status.
func generateDataSummary(rows []*domain.PanelRow) DataSummary {
	var s DataSummary
	players := make(map[int]struct{})

	for _, r := range rows {
		players[r.PlayerID] = struct{}{}
		s.Rows++
		switch r.Status {
		case domain.RowPlayed:
			s.PlayedRows++
		case domain.RowBlank:
			s.BlankRows++
		case domain.RowMissing:
			s.MissingRows++
		}
		if r.IsDouble {
			s.DoubleRows++
		}
		if r.Target != nil {
			s.RowsWithTarget++
		}
		if s.FirstGameweek == 0 || r.Gameweek < s.FirstGameweek {
			s.FirstGameweek = r.Gameweek
		}
		if r.Gameweek > s.LastGameweek {
			s.LastGameweek = r.Gameweek
		}
	}
	s.Players = len(players)
	return s
}

func generateSplitMetrics(splits []*domain.SplitMetrics) []SplitMetricRow {
	rows := make([]SplitMetricRow, 0, len(splits))
	for _, m := range splits {
		rows = append(rows, SplitMetricRow{
			Model:              m.Model,
			Cutoff:             m.Cutoff,
			TestGameweek:       m.TestGameweek,
			TrainRows:          m.TrainRows,
			TestRows:           m.TestRows,
			MAE:                m.MAE,
			RMSE:               m.RMSE,
			Spearman:           m.Spearman,
			MinutesMAE:         m.MinutesMAE,
			MinutesCalibration: m.MinutesCalibration,
		})
	}
	sortSplitMetrics(rows)
	return rows
}

func generateModelMetrics(aggs []*domain.SeasonMetrics) []ModelMetricRow {
	rows := make([]ModelMetricRow, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, ModelMetricRow{
			Model:              a.Model,
			Splits:             a.Splits,
			TestRows:           a.TestRows,
			MAE:                a.MAE,
			RMSE:               a.RMSE,
			Spearman:           a.Spearman,
			MinutesMAE:         a.MinutesMAE,
			MinutesCalibration: a.MinutesCalibration,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Model < rows[j].Model })
	return rows
}

// sortSplitMetrics sorts by (model, cutoff) for deterministic output.
func sortSplitMetrics(rows []SplitMetricRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Model != rows[j].Model {
			return rows[i].Model < rows[j].Model
		}
		return rows[i].Cutoff < rows[j].Cutoff
	})
}

package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/features"
	"fpl-points-lab/internal/fixtures"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/panel"
	"fpl-points-lab/internal/storage/memory"
	"fpl-points-lab/internal/targets"
)

var testWindows = []int{3, 5}

func f(v float64) *float64 { return &v }

func demoRows(t *testing.T, gameweeks int) []*domain.PanelRow {
	t.Helper()
	log := logging.Discard()
	p, err := panel.NewBuilder(log).Build(fixtures.DemoSeason("2024-25", gameweeks))
	require.NoError(t, err)
	engine, err := features.NewEngine(testWindows, log)
	require.NoError(t, err)
	require.NoError(t, engine.Apply(p))
	require.NoError(t, targets.NewShifter(log).Apply(p))
	return p.Rows
}

func testSplits(runID string) []*domain.SplitMetrics {
	return []*domain.SplitMetrics{
		{RunID: runID, Season: "2024-25", Model: domain.ModelTwoStage, Cutoff: 6, TestGameweek: 7,
			TrainRows: 50, TestRows: 10, MAE: 2.0, RMSE: 2.5, Spearman: f(0.4), MinutesMAE: f(20), MinutesCalibration: f(5)},
		{RunID: runID, Season: "2024-25", Model: domain.ModelForm, Cutoff: 6, TestGameweek: 7,
			TrainRows: 50, TestRows: 10, MAE: 1.0, RMSE: 1.0, Spearman: nil},
		{RunID: runID, Season: "2024-25", Model: domain.ModelForm, Cutoff: 5, TestGameweek: 6,
			TrainRows: 40, TestRows: 10, MAE: 3.0, RMSE: 2.0, Spearman: f(0.5)},
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSplitMetricsStore()
	require.NoError(t, store.InsertBulk(ctx, testSplits("run-1")))

	fixed := time.Date(2025, 5, 25, 18, 0, 0, 0, time.UTC)
	rows := demoRows(t, 8)
	report, err := NewGenerator(store).WithClock(func() time.Time { return fixed }).
		Generate(ctx, "run-1", "2024-25", "abc", testWindows, rows)
	require.NoError(t, err)

	assert.Equal(t, fixed, report.GeneratedAt)
	assert.Equal(t, []int{3, 5}, report.Windows)

	d := report.DataSummary
	assert.Equal(t, 12, d.Players)
	assert.Equal(t, 96, d.Rows)
	assert.Equal(t, 6, d.BlankRows)
	assert.Equal(t, 6, d.DoubleRows)
	assert.Equal(t, 1, d.MissingRows)
	assert.Equal(t, 89, d.PlayedRows)
	assert.Equal(t, 1, d.FirstGameweek)
	assert.Equal(t, 8, d.LastGameweek)

	require.Len(t, report.SplitMetrics, 3)
	assert.Equal(t, domain.ModelForm, report.SplitMetrics[0].Model)
	assert.Equal(t, 5, report.SplitMetrics[0].Cutoff)
	assert.Equal(t, 6, report.SplitMetrics[1].Cutoff)
	assert.Equal(t, domain.ModelTwoStage, report.SplitMetrics[2].Model)

	require.Len(t, report.ModelMetrics, 2)
	form := report.ModelMetrics[0]
	assert.Equal(t, domain.ModelForm, form.Model)
	assert.Equal(t, 2, form.Splits)
	assert.Equal(t, 20, form.TestRows)
	assert.InDelta(t, 2.0, form.MAE, 1e-12)
	require.NotNil(t, form.Spearman)
	assert.InDelta(t, 0.5, *form.Spearman, 1e-12)
	assert.Nil(t, form.MinutesMAE)
}

func TestGenerator_NoSplits(t *testing.T) {
	report, err := NewGenerator(memory.NewSplitMetricsStore()).
		Generate(context.Background(), "missing", "2024-25", "abc", testWindows, nil)
	require.NoError(t, err)
	assert.Empty(t, report.SplitMetrics)
	assert.Empty(t, report.ModelMetrics)
	assert.Equal(t, 0, report.DataSummary.Rows)
}

func TestRenderMarkdown_Sections(t *testing.T) {
	report := &Report{
		GeneratedAt:      time.Date(2025, 5, 25, 18, 0, 0, 0, time.UTC),
		RunID:            "run-1",
		Season:           "2024-25",
		PanelFingerprint: "abc",
		Windows:          []int{3, 5},
		DataQuality: DataQualitySection{
			SufficiencyChecks: []SufficiencyCheckRow{{Name: "players", Threshold: ">= 10", Actual: "12", Pass: true}},
			IntegrityErrors:   []string{"missing data: player 32 gameweek 5"},
			AllChecksPassed:   true,
		},
		Audit:        AuditSection{RowsAudited: 96, IdempotenceMatch: true},
		ModelMetrics: []ModelMetricRow{{Model: domain.ModelForm, Splits: 2, TestRows: 20, MAE: 2, RMSE: 1.5}},
		Reproducibility: ReproducibilityMetadata{
			GeneratorVersion: "1.0.0",
			ConfigHash:       "cfg",
			CommitHash:       "deadbee",
			Command:          "pipeline -demo",
		},
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Backtest Report 2024-25",
		"Generated: 2025-05-25T18:00:00Z",
		"Windows: 3,5",
		"## Panel Summary",
		"| players | >= 10 | 12 | PASS |",
		"**All checks passed.**",
		"- missing data: player 32 gameweek 5",
		"Rows audited: 96",
		"No violations.",
		"Rebuild fingerprint: MATCH",
		"| form | 2 | 20 | 2.0000 | 1.5000 | n/a | n/a | n/a |",
		"No splits evaluated.",
		"| Command | `pipeline -demo` |",
	} {
		assert.Contains(t, md, want)
	}
}

func TestRenderPanelCSV_ColumnCounts(t *testing.T) {
	rows := demoRows(t, 6)
	csv := RenderPanelCSV(rows, testWindows)

	lines := strings.Split(strings.TrimSuffix(csv, "\n"), "\n")
	require.Len(t, lines, len(rows)+1)

	header := strings.Split(lines[0], ",")
	assert.Equal(t, 7+len(panel.FeatureColumns(testWindows))+5, len(header))
	assert.Equal(t, "player_id", header[0])
	assert.Equal(t, "next_minutes", header[len(header)-1])
	for i, line := range lines[1:] {
		assert.Equal(t, len(header), len(strings.Split(line, ",")), "row %d", i)
	}

	// Last gameweek rows have no target.
	last := strings.Split(lines[len(lines)-1], ",")
	assert.Equal(t, "", last[len(last)-1])
}

func TestRenderSplitMetricsCSV(t *testing.T) {
	csv := RenderSplitMetricsCSV([]SplitMetricRow{
		{Model: domain.ModelForm, Cutoff: 5, TestGameweek: 6, TrainRows: 40, TestRows: 10, MAE: 1.5, RMSE: 2},
	})
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "form,5,6,40,10,1.500000,2.000000,,,", lines[1])
}

func TestRenderPredictionsCSV(t *testing.T) {
	csv := RenderPredictionsCSV([]*domain.Prediction{
		{PlayerID: 7, Season: "2024-25", Gameweek: 5, Model: domain.ModelTwoStage, Points: 3.25, Minutes: f(72)},
	})
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "two_stage,7,2024-25,5,6,3.250000,72.000000", lines[1])
}

package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/fixtures"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/panel"
	"fpl-points-lab/internal/pipeline"
	"fpl-points-lab/internal/storage/memory"
)

var testWindows = []int{3, 5}

func demoBuild(t *testing.T) BuildFunc {
	t.Helper()
	raw := fixtures.DemoSeason("2024-25", 10)
	pp, err := pipeline.NewPanelPipeline(testWindows, logging.Discard())
	require.NoError(t, err)
	return func() (*panel.Panel, error) { return pp.Build(raw) }
}

func demoRows(t *testing.T) []*domain.PanelRow {
	t.Helper()
	p, err := demoBuild(t)()
	require.NoError(t, err)
	return p.Rows
}

func findRow(rows []*domain.PanelRow, playerID, gw int) *domain.PanelRow {
	for _, r := range rows {
		if r.PlayerID == playerID && r.Gameweek == gw {
			return r
		}
	}
	return nil
}

func TestAuditPanel_DemoSeasonIsClean(t *testing.T) {
	rows := demoRows(t)
	report := AuditPanel(rows)

	assert.True(t, report.OK(), "violations: %v", report.Violations)
	assert.Equal(t, len(rows), report.Rows)
	assert.NoError(t, report.Err())
	assert.False(t, report.IsLeakage())
}

func TestAuditPanel_WindowBoundary(t *testing.T) {
	rows := demoRows(t)
	r := findRow(rows, 11, 6)
	require.NotNil(t, r)
	w := r.Window(3)
	require.NotNil(t, w)
	w.Player.Gameweeks = append(w.Player.Gameweeks, 6) // row's own gameweek

	report := AuditPanel(rows)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, CheckWindowBoundary, v.Check)
	assert.Equal(t, r.Key(), v.Key)
	assert.True(t, report.IsLeakage())

	var le *domain.LeakageError
	require.True(t, errors.As(report.Err(), &le))
	assert.Equal(t, "player_form", le.Component)
	assert.Equal(t, 6, le.OffendingGW)
}

func TestAuditPanel_GameweekOlderThanWindow(t *testing.T) {
	rows := demoRows(t)
	r := findRow(rows, 20, 8)
	require.NotNil(t, r)
	r.Window(3).Team.Gameweeks = []int{4, 6, 7} // gw4 lies outside [5, 7]

	report := AuditPanel(rows)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, CheckWindowBoundary, report.Violations[0].Check)
}

func TestAuditPanel_TargetShift(t *testing.T) {
	rows := demoRows(t)
	r := findRow(rows, 12, 4)
	require.NotNil(t, r)
	require.NotNil(t, r.Target)
	r.Target.Gameweek = r.Gameweek

	report := AuditPanel(rows)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, CheckTargetShift, report.Violations[0].Check)
	assert.True(t, errors.Is(report.Err(), domain.ErrLeakage))
}

func TestAuditPanel_StageNotFinal(t *testing.T) {
	rows := demoRows(t)
	rows[0].Stage = domain.StageFeatures

	report := AuditPanel(rows)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, CheckStage, report.Violations[0].Check)
}

func TestAuditPanel_DuplicateAndOrder(t *testing.T) {
	rows := demoRows(t)
	dup := *rows[1]
	bad := append([]*domain.PanelRow{}, rows[:2]...)
	bad = append(bad, &dup)

	report := AuditPanel(bad)
	checks := make(map[string]bool)
	for _, v := range report.Violations {
		checks[v.Check] = true
		assert.True(t, errors.Is(v.Err, domain.ErrSchema))
	}
	assert.True(t, checks[CheckDuplicateKey])
	assert.True(t, checks[CheckOrder])
	assert.False(t, report.IsLeakage())
}

func TestVerifyIdempotent(t *testing.T) {
	result, err := VerifyIdempotent(demoBuild(t), testWindows)
	require.NoError(t, err)
	assert.True(t, result.Match())
	assert.Len(t, result.First, 64)
}

func TestIdempotenceResult_Err(t *testing.T) {
	same := &IdempotenceResult{First: "abc", Second: "abc"}
	assert.NoError(t, same.Err())

	diff := &IdempotenceResult{First: "abc", Second: "abd"}
	err := diff.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotIdempotent))
	assert.Contains(t, err.Error(), "abd")
}

func TestVerifyIdempotent_BuildError(t *testing.T) {
	boom := errors.New("boom")
	_, err := VerifyIdempotent(func() (*panel.Panel, error) { return nil, boom }, testWindows)
	assert.ErrorIs(t, err, boom)
}

func TestStoredVerifier(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPanelStore()
	rows := demoRows(t)
	version := panel.Fingerprint(rows, testWindows)
	require.NoError(t, store.InsertBulk(ctx, version, rows))

	v := NewStoredVerifier(store)

	t.Run("identical rebuild", func(t *testing.T) {
		divergences, err := v.VerifyVersion(ctx, version, demoRows(t))
		require.NoError(t, err)
		assert.Empty(t, divergences)
	})

	t.Run("changed rebuild", func(t *testing.T) {
		rebuilt := demoRows(t)
		r := findRow(rebuilt, 10, 3)
		require.NotNil(t, r)
		r.ObservedPoints += 2

		divergences, err := v.VerifyVersion(ctx, version, rebuilt)
		require.NoError(t, err)
		require.Len(t, divergences, 1)
		assert.Equal(t, "ObservedPoints", divergences[0].Field)
		assert.Equal(t, r.Key(), divergences[0].Key)
	})

	t.Run("extra rebuilt row", func(t *testing.T) {
		rebuilt := demoRows(t)
		extra := *rebuilt[len(rebuilt)-1]
		extra.Gameweek++
		rebuilt = append(rebuilt, &extra)

		divergences, err := v.VerifyVersion(ctx, version, rebuilt)
		require.NoError(t, err)
		require.Len(t, divergences, 1)
		assert.Equal(t, "Row", divergences[0].Field)
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := v.VerifyVersion(ctx, "nope", demoRows(t))
		assert.ErrorIs(t, err, ErrVersionNotFound)
	})
}

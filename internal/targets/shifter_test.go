package targets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/features"
	"fpl-points-lab/internal/fixtures"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/panel"
)

const testSeason = "2024-25"

func key(playerID, gw int) domain.PanelKey {
	return domain.PanelKey{PlayerID: playerID, Season: testSeason, Gameweek: gw}
}

// testPanel: player 7 (team 1) plays gw1, blanks gw2, plays a double in gw3,
// is missing in gw4 and plays gw5 (season end).
func testPanel(t *testing.T, withFeatures bool) *panel.Panel {
	t.Helper()
	b := fixtures.NewSeason(testSeason)
	m1 := b.Fixture(1, 1, 2, 0)
	b.Fixture(2, 2, 3, 0)
	m3a := b.Fixture(3, 1, 2, 0)
	m3b := b.Fixture(3, 3, 1, 3)
	b.Fixture(4, 1, 3, 0)
	m5 := b.Fixture(5, 1, 2, 0)

	b.Played(7, domain.PositionMidfielder, 1, m1, 90, 5)
	b.Played(7, domain.PositionMidfielder, 1, m3a, 90, 2)
	b.Played(7, domain.PositionMidfielder, 1, m3b, 45, 6)
	b.Played(7, domain.PositionMidfielder, 1, m5, 90, 3)

	p, err := panel.NewBuilder(logging.Discard()).Build(b.Raw())
	require.NoError(t, err)

	if withFeatures {
		e, err := features.NewEngine([]int{3}, logging.Discard())
		require.NoError(t, err)
		require.NoError(t, e.Apply(p))
	}
	return p
}

func TestApply_Targets(t *testing.T) {
	p := testPanel(t, true)
	require.NoError(t, NewShifter(logging.Discard()).Apply(p))

	tests := []struct {
		gw      int
		want    *domain.Target
		comment string
	}{
		{1, &domain.Target{Gameweek: 2, Points: 0, Minutes: 0}, "blank next gameweek is zero"},
		{2, &domain.Target{Gameweek: 3, Points: 8, Minutes: 135}, "double gameweek summed"},
		{3, nil, "missing next gameweek is undefined"},
		{4, &domain.Target{Gameweek: 5, Points: 3, Minutes: 90}, "missing row still gets a target"},
		{5, nil, "season end"},
	}
	for _, tt := range tests {
		row := p.Row(key(7, tt.gw))
		require.NotNil(t, row)
		assert.Equal(t, tt.want, row.Target, tt.comment)
		assert.Equal(t, domain.StageTargets, row.Stage)
	}
}

func TestApply_TrailingBlankTargetIsZero(t *testing.T) {
	// Team 1 blanks in the final gameweek; player 7 last plays gw2.
	b := fixtures.NewSeason(testSeason)
	m1 := b.Fixture(1, 1, 2, 0)
	m2 := b.Fixture(2, 2, 1, 0)
	b.Fixture(3, 2, 3, 0)
	b.Played(7, domain.PositionMidfielder, 1, m1, 90, 5)
	b.Played(7, domain.PositionMidfielder, 1, m2, 90, 4)

	p, err := panel.NewBuilder(logging.Discard()).Build(b.Raw())
	require.NoError(t, err)
	e, err := features.NewEngine([]int{3}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, e.Apply(p))
	require.NoError(t, NewShifter(logging.Discard()).Apply(p))

	row := p.Row(key(7, 2))
	require.NotNil(t, row)
	assert.Equal(t, &domain.Target{Gameweek: 3, Points: 0, Minutes: 0}, row.Target)

	blank := p.Row(key(7, 3))
	require.NotNil(t, blank)
	assert.Equal(t, domain.RowBlank, blank.Status)
	assert.Nil(t, blank.Target, "season end")
}

func TestApply_TargetIsNextGameweek(t *testing.T) {
	p, err := panel.NewBuilder(logging.Discard()).Build(fixtures.DemoSeason(testSeason, 10))
	require.NoError(t, err)
	e, err := features.NewEngine([]int{3, 5}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, e.Apply(p))
	require.NoError(t, NewShifter(logging.Discard()).Apply(p))

	for _, r := range p.Rows {
		if r.Target == nil {
			continue
		}
		if r.Target.Gameweek != r.Gameweek+1 {
			t.Fatalf("row %+v has target gameweek %d", r.Key(), r.Target.Gameweek)
		}
		next := p.Row(key(r.PlayerID, r.Gameweek+1))
		require.NotNil(t, next)
		assert.Equal(t, next.ObservedPoints, r.Target.Points)
		assert.Equal(t, next.ObservedMinutes, r.Target.Minutes)
	}
}

func TestApply_RequiresFeatures(t *testing.T) {
	p := testPanel(t, false)

	err := NewShifter(logging.Discard()).Apply(p)
	require.True(t, errors.Is(err, domain.ErrLeakage))

	var le *domain.LeakageError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "stage_order", le.Component)

	for _, r := range p.Rows {
		assert.Nil(t, r.Target, "no row is touched when the guard trips")
	}
}

func TestApply_FeatureEngineRefusesAfterTargets(t *testing.T) {
	p := testPanel(t, true)
	require.NoError(t, NewShifter(logging.Discard()).Apply(p))

	e, err := features.NewEngine([]int{3}, logging.Discard())
	require.NoError(t, err)
	assert.True(t, errors.Is(e.Apply(p), domain.ErrLeakage))
}

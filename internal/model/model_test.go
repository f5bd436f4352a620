package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
)

func f(v float64) *float64 { return &v }

func row(playerID int, pos domain.Position, points, minutes *float64) *domain.PanelRow {
	return &domain.PanelRow{
		PlayerID: playerID,
		Season:   "2024-25",
		Gameweek: 6,
		Position: pos,
		Windows: []domain.WindowFeatures{
			{Size: 3},
			{Size: 5, Player: domain.PlayerForm{Points: points, Minutes: minutes}},
		},
	}
}

func trained(pos domain.Position, points, minutes int) *domain.PanelRow {
	r := row(0, pos, nil, nil)
	r.Target = &domain.Target{Gameweek: 7, Points: points, Minutes: minutes}
	return r
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		factory, err := New(name, []int{5, 3})
		require.NoError(t, err)
		p := factory()
		assert.Equal(t, name, p.Name())
	}

	_, err := New("xgboost", []int{3})
	assert.True(t, errors.Is(err, domain.ErrConfig))

	_, err = New(domain.ModelForm, nil)
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestForm_UsesLargestWindow(t *testing.T) {
	factory, err := New(domain.ModelForm, []int{3, 5})
	require.NoError(t, err)
	p := factory()

	require.NoError(t, p.Fit([]*domain.PanelRow{
		trained(domain.PositionForward, 6, 90),
		trained(domain.PositionForward, 2, 90),
		trained(domain.PositionDefender, 1, 90),
	}))

	preds, err := p.Predict([]*domain.PanelRow{
		row(1, domain.PositionForward, f(7.5), nil),
		row(2, domain.PositionForward, nil, nil),
		row(3, domain.PositionGoalkeeper, nil, nil),
	})
	require.NoError(t, err)
	require.Len(t, preds, 3)

	assert.InDelta(t, 7.5, preds[0].Points, 1e-9, "rolling mean")
	assert.InDelta(t, 4.0, preds[1].Points, 1e-9, "position fallback")
	assert.InDelta(t, 3.0, preds[2].Points, 1e-9, "global fallback")
	for _, p := range preds {
		assert.Nil(t, p.Minutes)
		assert.Equal(t, domain.ModelForm, p.Model)
	}
	assert.Equal(t, 1, preds[0].PlayerID)
	assert.Equal(t, 6, preds[0].Gameweek)
}

func TestForm_PredictBeforeFit(t *testing.T) {
	_, err := NewForm(3).Predict(nil)
	assert.Error(t, err)
}

func TestTwoStage(t *testing.T) {
	p := NewTwoStage(5)
	require.NoError(t, p.Fit([]*domain.PanelRow{
		trained(domain.PositionMidfielder, 6, 90),
		trained(domain.PositionMidfielder, 3, 90),
		trained(domain.PositionMidfielder, 0, 0),
		trained(domain.PositionDefender, 2, 45),
	}))

	healthy := row(1, domain.PositionMidfielder, nil, f(60))
	doubtful := row(2, domain.PositionMidfielder, nil, f(90))
	doubtful.Risk = domain.RiskFlags{Known: true, Doubtful: true}
	chance := 75
	partial := row(3, domain.PositionDefender, nil, f(80))
	partial.Risk = domain.RiskFlags{Known: true, Doubtful: true, ChanceOfPlaying: &chance}
	injured := row(4, domain.PositionMidfielder, nil, f(90))
	injured.Risk = domain.RiskFlags{Known: true, Injured: true}
	noHistory := row(5, domain.PositionMidfielder, nil, nil)

	preds, err := p.Predict([]*domain.PanelRow{healthy, doubtful, partial, injured, noHistory})
	require.NoError(t, err)

	// Midfielders: 9 points over 180 minutes = 4.5 per 90.
	assert.InDelta(t, 60.0, *preds[0].Minutes, 1e-9)
	assert.InDelta(t, 3.0, preds[0].Points, 1e-9)

	assert.InDelta(t, 45.0, *preds[1].Minutes, 1e-9)
	assert.InDelta(t, 2.25, preds[1].Points, 1e-9)

	// Defenders: 2 points over 45 minutes = 4 per 90.
	assert.InDelta(t, 60.0, *preds[2].Minutes, 1e-9)
	assert.InDelta(t, 60.0/90*4, preds[2].Points, 1e-9)

	assert.InDelta(t, 0.0, *preds[3].Minutes, 1e-9)
	assert.InDelta(t, 0.0, preds[3].Points, 1e-9)

	// Position minutes mean: (90 + 90 + 0) / 3.
	assert.InDelta(t, 60.0, *preds[4].Minutes, 1e-9)
}

func TestAvailabilityFactor(t *testing.T) {
	zero := 0
	tests := []struct {
		name string
		risk domain.RiskFlags
		want float64
	}{
		{"unknown", domain.RiskFlags{}, 1},
		{"suspended", domain.RiskFlags{Known: true, Suspended: true}, 0},
		{"unavailable", domain.RiskFlags{Known: true, Unavailable: true}, 0},
		{"doubtful", domain.RiskFlags{Known: true, Doubtful: true}, doubtfulFactor},
		{"chance zero", domain.RiskFlags{Known: true, ChanceOfPlaying: &zero}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, availabilityFactor(tt.risk), 1e-9)
		})
	}
}

package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func testPanelRow(playerID, gw int) *domain.PanelRow {
	return &domain.PanelRow{
		PlayerID:          playerID,
		Season:            "2024-25",
		Gameweek:          gw,
		Position:          domain.PositionDefender,
		TeamID:            3,
		Price:             5.5,
		Status:            domain.RowPlayed,
		OpponentTeamID:    ptr(8),
		IsHome:            ptr(true),
		FixtureDifficulty: ptr(2.0),
		FixtureCount:      1,
		Windows: []domain.WindowFeatures{
			{
				Size: 3,
				Player: domain.PlayerForm{
					SampleSize: 2,
					Gameweeks:  []int{gw - 2, gw - 1},
					Points:     ptr(4.5),
					Minutes:    ptr(90.0),
				},
				Team: domain.TeamForm{SampleSize: 2, Gameweeks: []int{gw - 2, gw - 1}, GoalsScored: ptr(1.5)},
			},
		},
		Risk:   domain.RiskFlags{Known: true, Doubtful: true, ChanceOfPlaying: ptr(75)},
		Target: &domain.Target{Gameweek: gw + 1, Points: 2, Minutes: 90},
		Stage:  domain.StageTargets,
	}
}

func TestPanelStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPanelStore(conn)

	blank := testPanelRow(1, 5)
	blank.Status = domain.RowBlank
	blank.IsBlank = true
	blank.OpponentTeamID = nil
	blank.IsHome = nil
	blank.FixtureDifficulty = nil
	blank.FixtureCount = 0
	blank.Target = nil

	rows := []*domain.PanelRow{testPanelRow(2, 4), testPanelRow(1, 4), blank}
	require.NoError(t, store.InsertBulk(ctx, "v1", rows))

	result, err := store.GetBySeason(ctx, "v1", "2024-25")
	require.NoError(t, err)
	require.Len(t, result, 3)

	first := result[0]
	assert.Equal(t, 1, first.PlayerID)
	assert.Equal(t, 4, first.Gameweek)
	assert.Equal(t, domain.PositionDefender, first.Position)
	require.NotNil(t, first.OpponentTeamID)
	assert.Equal(t, 8, *first.OpponentTeamID)
	require.Len(t, first.Windows, 1)
	assert.Equal(t, []int{2, 3}, first.Windows[0].Player.Gameweeks)
	require.NotNil(t, first.Windows[0].Player.Points)
	assert.InDelta(t, 4.5, *first.Windows[0].Player.Points, 1e-9)
	assert.Nil(t, first.Windows[0].Player.XG)
	assert.True(t, first.Risk.Doubtful)
	require.NotNil(t, first.Target)
	assert.Equal(t, 5, first.Target.Gameweek)
	assert.Equal(t, domain.StageTargets, first.Stage)

	second := result[1]
	assert.True(t, second.IsBlank)
	assert.Nil(t, second.OpponentTeamID)
	assert.Nil(t, second.IsHome)
	assert.Nil(t, second.Target)

	ranged, err := store.GetByGameweekRange(ctx, "v1", "2024-25", 5, 10)
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	ok, err := store.HasVersion(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.HasVersion(ctx, "v2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPanelStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPanelStore(conn)

	require.NoError(t, store.InsertBulk(ctx, "v1", []*domain.PanelRow{testPanelRow(1, 4)}))

	err := store.InsertBulk(ctx, "v1", []*domain.PanelRow{testPanelRow(1, 4)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.InsertBulk(ctx, "v2", []*domain.PanelRow{testPanelRow(1, 5), testPanelRow(1, 5)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	require.NoError(t, store.InsertBulk(ctx, "v2", []*domain.PanelRow{testPanelRow(1, 4)}))
}

func TestSplitMetricsStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSplitMetricsStore(conn)

	metrics := []*domain.SplitMetrics{
		{RunID: "r1", Season: "2024-25", Model: domain.ModelTwoStage, Cutoff: 5, TestGameweek: 6, TrainRows: 100, TestRows: 20,
			MAE: 1.9, RMSE: 2.7, Spearman: ptr(0.41), MinutesMAE: ptr(18.5), MinutesCalibration: ptr(6.0)},
		{RunID: "r1", Season: "2024-25", Model: domain.ModelForm, Cutoff: 6, TestGameweek: 7, TrainRows: 120, TestRows: 20,
			MAE: 2.1, RMSE: 3.0},
		{RunID: "r1", Season: "2024-25", Model: domain.ModelForm, Cutoff: 5, TestGameweek: 6, TrainRows: 100, TestRows: 20,
			MAE: 2.0, RMSE: 2.8, Spearman: ptr(0.35)},
	}
	require.NoError(t, store.InsertBulk(ctx, metrics))

	result, err := store.GetByRun(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, domain.ModelForm, result[0].Model)
	assert.Equal(t, 5, result[0].Cutoff)
	require.NotNil(t, result[0].Spearman)
	assert.InDelta(t, 0.35, *result[0].Spearman, 1e-9)
	assert.Nil(t, result[1].Spearman)
	assert.Equal(t, domain.ModelTwoStage, result[2].Model)
	require.NotNil(t, result[2].MinutesMAE)

	assert.ErrorIs(t, store.InsertBulk(ctx, metrics[:1]), storage.ErrDuplicateKey)
}

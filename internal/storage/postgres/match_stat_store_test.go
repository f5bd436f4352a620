package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func testMatchStat(playerID, gw, matchID int) *domain.MatchStatRaw {
	return &domain.MatchStatRaw{
		PlayerID:       playerID,
		Season:         "2024-25",
		Gameweek:       gw,
		MatchID:        matchID,
		TeamID:         1,
		OpponentTeamID: 2,
		WasHome:        true,
		KickoffMs:      1723276800000 + int64(gw)*604800000,
		Position:       domain.PositionMidfielder,
		Minutes:        90,
		TotalPoints:    6,
		GoalsScored:    1,
		BPS:            30,
		Influence:      40.2,
		ICTIndex:       10.1,
		Value:          75,
	}
}

func TestMatchStatStore_InsertBulkAndGetBySeason(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMatchStatStore(pool)

	withAdvanced := testMatchStat(10, 2, 12)
	withAdvanced.XG = ptr(0.45)
	withAdvanced.Shots = ptr(3)

	rows := []*domain.MatchStatRaw{
		testMatchStat(10, 1, 1),
		withAdvanced,
		testMatchStat(5, 1, 1),
	}

	err := store.InsertBulk(ctx, rows)
	require.NoError(t, err)

	result, err := store.GetBySeason(ctx, "2024-25")
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, 5, result[0].PlayerID)
	assert.Equal(t, domain.PositionMidfielder, result[0].Position)
	assert.Nil(t, result[0].XG)

	assert.Equal(t, 12, result[2].MatchID)
	require.NotNil(t, result[2].XG)
	assert.InDelta(t, 0.45, *result[2].XG, 1e-9)
	require.NotNil(t, result[2].Shots)
	assert.Equal(t, 3, *result[2].Shots)
	assert.Nil(t, result[2].KeyPasses)

	player, err := store.GetByPlayer(ctx, "2024-25", 10)
	require.NoError(t, err)
	assert.Len(t, player, 2)
}

func TestMatchStatStore_InsertBulkDuplicateRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMatchStatStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.MatchStatRaw{testMatchStat(1, 1, 1)}))

	err := store.InsertBulk(ctx, []*domain.MatchStatRaw{
		testMatchStat(2, 1, 1),
		testMatchStat(1, 1, 1),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	result, err := store.GetBySeason(ctx, "2024-25")
	require.NoError(t, err)
	assert.Len(t, result, 1, "failed batch must not leave partial rows")
}

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func TestFixtureStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFixtureStore(pool)

	fixtures := []*domain.Fixture{
		{Season: "2024-25", Gameweek: 1, MatchID: 1, TeamID: 1, OpponentTeamID: 2, IsHome: true, Difficulty: 2,
			KickoffMs: 1723230000000, Finished: true, TeamScore: ptr(2), OpponentScore: ptr(0)},
		{Season: "2024-25", Gameweek: 1, MatchID: 1, TeamID: 2, OpponentTeamID: 1, Difficulty: 4,
			KickoffMs: 1723230000000, Finished: true, TeamScore: ptr(0), OpponentScore: ptr(2)},
		{Season: "2024-25", Gameweek: 2, MatchID: 11, TeamID: 1, OpponentTeamID: 3, Difficulty: 3,
			KickoffMs: 1723834800000, DaysRest: ptr(7.0)},
	}

	require.NoError(t, store.InsertBulk(ctx, fixtures))

	result, err := store.GetBySeason(ctx, "2024-25")
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, 1, result[0].TeamID)
	assert.True(t, result[0].IsHome)
	require.NotNil(t, result[0].TeamScore)
	assert.Equal(t, 2, *result[0].TeamScore)
	assert.Nil(t, result[0].DaysRest)

	require.NotNil(t, result[1].DaysRest)
	assert.InDelta(t, 7.0, *result[1].DaysRest, 1e-9)
	assert.Nil(t, result[1].TeamScore)

	seasons, err := store.ListSeasons(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-25"}, seasons)

	err = store.InsertBulk(ctx, fixtures[:1])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

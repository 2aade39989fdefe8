package gamification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardCache_MissReturnsNil(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewLeaderboardCache(client)

	mock.ExpectGet("leaderboard:all_time:50").RedisNil()

	entries, err := cache.Get(context.Background(), PeriodAllTime, 50)

	assert.NoError(t, err)
	assert.Nil(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardCache_SetThenGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewLeaderboardCache(client)

	entries := []LeaderboardEntry{
		{UserID: 2, Name: "Ana", Points: 300},
		{UserID: 5, Name: "Bruno", Points: 120},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)

	mock.ExpectSet("leaderboard:weekly:10", data, leaderboardTTL).SetVal("OK")
	mock.ExpectGet("leaderboard:weekly:10").SetVal(string(data))

	require.NoError(t, cache.Set(context.Background(), PeriodWeekly, 10, entries))

	got, err := cache.Get(context.Background(), PeriodWeekly, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, 120, got[1].Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardCache_NilCacheIsNoop(t *testing.T) {
	var cache *LeaderboardCache

	entries, err := cache.Get(context.Background(), PeriodAllTime, 50)
	assert.NoError(t, err)
	assert.Nil(t, entries)

	assert.NoError(t, cache.Set(context.Background(), PeriodAllTime, 50, nil))
}

package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardTTL = 5 * time.Minute

// LeaderboardCache keeps ranked leaderboards in redis so repeated reads
// skip the aggregation query. A miss returns (nil, nil).
type LeaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

func leaderboardKey(period string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%d", period, limit)
}

func (c *LeaderboardCache) Get(ctx context.Context, period string, limit int) ([]LeaderboardEntry, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, leaderboardKey(period, limit)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached leaderboard: %w", err)
	}

	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}
	return entries, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, period string, limit int, entries []LeaderboardEntry) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	if err := c.client.Set(ctx, leaderboardKey(period, limit), data, leaderboardTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache leaderboard: %w", err)
	}
	return nil
}

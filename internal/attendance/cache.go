package attendance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsCacheTTL = 5 * time.Minute

// StatsCache keeps monthly aggregates in redis so the admin dashboard does
// not hit Postgres on every load. Entries expire on their own; the worker
// also overwrites them after each write event.
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache wraps a redis client. A nil client yields a nil cache, which
// the service treats as "no caching".
func NewStatsCache(client *redis.Client) *StatsCache {
	if client == nil {
		return nil
	}
	return &StatsCache{client: client}
}

// Get reads the cached stats for a month key ("2006-01").
func (c *StatsCache) Get(ctx context.Context, month string) (Stats, bool) {
	raw, err := c.client.Get(ctx, "stats:month:"+month).Bytes()
	if err != nil {
		return Stats{}, false
	}
	var s Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return Stats{}, false
	}
	return s, true
}

// Set stores the stats for a month key. Failures are ignored; the next read
// falls through to Postgres.
func (c *StatsCache) Set(ctx context.Context, month string, s Stats) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	c.client.Set(ctx, "stats:month:"+month, raw, statsCacheTTL)
}

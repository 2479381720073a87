package counters

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	vercelMetricsKey = "vercel:metrics"
	vercelSyncedKey  = "vercel:last_synced"
)

// VercelMetrics is the site-level snapshot written by the external
// analytics sync job. It is independent of the per-post counters.
type VercelMetrics struct {
	TopPages     []VercelStat `json:"topPages"`
	TopReferrers []VercelStat `json:"topReferrers"`
	TopDevices   []VercelStat `json:"topDevices"`
}

type VercelStat struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// VercelMetrics returns the latest synced snapshot plus its sync time.
// Both degrade to zero values when the snapshot is missing.
func (s *Store) VercelMetrics(ctx context.Context) (*VercelMetrics, string, error) {
	if s.rdb == nil {
		return nil, "", ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.rdb.Get(ctx, vercelMetricsKey).Result()
	if err == redis.Nil {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	var m VercelMetrics
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, "", err
	}

	synced, err := s.rdb.Get(ctx, vercelSyncedKey).Result()
	if err != nil && err != redis.Nil {
		synced = ""
	}
	return &m, synced, nil
}

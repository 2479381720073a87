package counters

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	trendingKey         = "trending:top"
	refreshRequestedKey = "trending:refresh_requested"
)

// TrendingEntry is one row of the pre-computed trending cache. The score
// is a recency-weighted ranking produced by the external refresh job.
type TrendingEntry struct {
	Slug     string  `json:"slug"`
	Score    float64 `json:"score"`
	Views24h uint64  `json:"views24h,omitempty"`
}

type trendingPayload struct {
	Entries     []TrendingEntry `json:"entries"`
	GeneratedAt string          `json:"generatedAt"`
}

// Trending reads the cached ranking. An absent key is not an error; it
// returns an empty slice so the caller can fall back to its own ranking.
func (s *Store) Trending(ctx context.Context) ([]TrendingEntry, error) {
	if s.rdb == nil {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.rdb.Get(ctx, trendingKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var payload trendingPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return payload.Entries, nil
}

// RequestRefresh marks the trending cache as stale. The external refresh
// job watches this key and recomputes the ranking.
func (s *Store) RequestRefresh(ctx context.Context) error {
	if s.rdb == nil {
		return ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.rdb.Set(ctx, refreshRequestedKey, time.Now().UTC().Format(time.RFC3339), 0).Err()
}

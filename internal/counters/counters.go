// Package counters reads the blog's per-post engagement counters from
// redis. Each dimension lives behind its own call with its own timeout so
// one slow read cannot drag the rest down; callers are expected to treat
// any error here as "no data" rather than a request failure.
package counters

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key layout, written by the ingestion side:
//
//	pageviews:<slug>      total views (string counter)
//	pageviews:log:<slug>  zset of view timestamps (unix seconds)
//	shares:<slug>         total shares
//	shares:log:<slug>     zset of share timestamps
//	comments:<slug>       total comments
//	comments:log:<slug>   zset of comment timestamps
const (
	viewsKey    = "pageviews:"
	viewsLogKey = "pageviews:log:"

	sharesKey    = "shares:"
	sharesLogKey = "shares:log:"

	commentsKey    = "comments:"
	commentsLogKey = "comments:log:"
)

// ErrUnavailable is returned by every read when no redis client is
// configured at all.
var ErrUnavailable = errors.New("counters: store not configured")

const defaultTimeout = 2 * time.Second

// Store wraps the redis client with read helpers for each counter
// dimension. The zero limit on failure policy lives with the caller.
type Store struct {
	rdb     *redis.Client
	timeout time.Duration

	now func() time.Time
}

// NewStore builds a Store. rdb may be nil, in which case every read
// reports ErrUnavailable. timeout caps each individual redis call;
// zero selects the default.
func NewStore(rdb *redis.Client, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{rdb: rdb, timeout: timeout, now: time.Now}
}

func (s *Store) Views(ctx context.Context, slugs []string) (map[string]uint64, error) {
	return s.totals(ctx, viewsKey, slugs)
}

func (s *Store) Views24h(ctx context.Context, slugs []string) (map[string]uint64, error) {
	return s.windowed(ctx, viewsLogKey, slugs, 24*time.Hour)
}

func (s *Store) ViewsRange(ctx context.Context, slugs []string, days int) (map[string]uint64, error) {
	return s.windowed(ctx, viewsLogKey, slugs, time.Duration(days)*24*time.Hour)
}

func (s *Store) Shares(ctx context.Context, slugs []string) (map[string]uint64, error) {
	return s.totals(ctx, sharesKey, slugs)
}

func (s *Store) Shares24h(ctx context.Context, slugs []string) (map[string]uint64, error) {
	return s.windowed(ctx, sharesLogKey, slugs, 24*time.Hour)
}

func (s *Store) Comments(ctx context.Context, slugs []string) (map[string]uint64, error) {
	return s.totals(ctx, commentsKey, slugs)
}

func (s *Store) Comments24h(ctx context.Context, slugs []string) (map[string]uint64, error) {
	return s.windowed(ctx, commentsLogKey, slugs, 24*time.Hour)
}

// totals reads plain string counters for every slug in one MGET.
func (s *Store) totals(ctx context.Context, prefix string, slugs []string) (map[string]uint64, error) {
	if s.rdb == nil {
		return nil, ErrUnavailable
	}
	if len(slugs) == 0 {
		return map[string]uint64{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = prefix + slug
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]uint64, len(slugs))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // missing key, defaults to 0 at merge time
		}
		if n, err := strconv.ParseUint(str, 10, 64); err == nil {
			out[slugs[i]] = n
		}
	}
	return out, nil
}

// windowed counts timestamped events newer than now-window via ZCOUNT,
// pipelined across all slugs.
func (s *Store) windowed(ctx context.Context, prefix string, slugs []string, window time.Duration) (map[string]uint64, error) {
	if s.rdb == nil {
		return nil, ErrUnavailable
	}
	if len(slugs) == 0 {
		return map[string]uint64{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	min := strconv.FormatInt(s.now().Add(-window).Unix(), 10)
	cmds := make([]*redis.IntCmd, len(slugs))
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, slug := range slugs {
			cmds[i] = pipe.ZCount(ctx, prefix+slug, min, "+inf")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]uint64, len(slugs))
	for i, cmd := range cmds {
		if n, err := cmd.Result(); err == nil && n > 0 {
			out[slugs[i]] = uint64(n)
		}
	}
	return out, nil
}

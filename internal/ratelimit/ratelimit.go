// Package ratelimit implements fixed-window rate limiting backed by a
// distributed counter store, with an in-process fallback for store outages.
package ratelimit

import (
	"context"
	"log"
	"time"
)

// Config is supplied per call site; distinct routes use distinct limits.
type Config struct {
	Limit  int
	Window time.Duration

	// FailClosed controls what happens when no counter store at all can be
	// consulted: deny (true) or permit (false). A store outage with a live
	// in-process fallback is not a failure in this sense; the fallback
	// still enforces a per-process window.
	FailClosed bool
}

// Result reports the outcome of one quota consumption. ResetAt is always
// set so callers can compute a Retry-After value.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store atomically increments the request counter for key in the current
// fixed window and returns the post-increment count plus the instant the
// window resets. Implementations must be safe for concurrent use.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Limiter enforces per-identity fixed-window limits. The primary store is
// optional; when it is nil or errors, the in-process fallback takes over
// (a documented relaxation: the effective limit becomes per-process).
type Limiter struct {
	store    Store
	fallback *MemoryStore
}

// New builds a limiter over the given primary store. Pass nil to run on
// the in-process fallback only.
func New(store Store) *Limiter {
	return &Limiter{store: store, fallback: NewMemoryStore()}
}

// Check consumes one request unit for identity on the named route.
// Increment-then-check semantics: the stored count may exceed the limit;
// the caller only ever observes allowed=false past it.
func (l *Limiter) Check(ctx context.Context, route, identity string, cfg Config) Result {
	key := route + ":" + identity

	if l.store != nil {
		count, resetAt, err := l.store.Increment(ctx, key, cfg.Window)
		if err == nil {
			return outcome(count, resetAt, cfg)
		}
		log.Printf("ratelimit: store unreachable, using in-process fallback: %v", err)
	}

	if l.fallback != nil {
		count, resetAt, err := l.fallback.Increment(ctx, key, cfg.Window)
		if err == nil {
			return outcome(count, resetAt, cfg)
		}
	}

	resetAt := time.Now().Add(cfg.Window)
	if cfg.FailClosed {
		return Result{Allowed: false, Limit: cfg.Limit, Remaining: 0, ResetAt: resetAt}
	}
	return Result{Allowed: true, Limit: cfg.Limit, Remaining: cfg.Limit, ResetAt: resetAt}
}

// StartJanitor sweeps expired fallback windows until ctx is cancelled.
func (l *Limiter) StartJanitor(ctx context.Context, every time.Duration) {
	if l.fallback != nil {
		l.fallback.StartJanitor(ctx, every)
	}
}

func outcome(count int64, resetAt time.Time, cfg Config) Result {
	remaining := cfg.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(cfg.Limit),
		Limit:     cfg.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// windowBounds aligns now to the fixed window grid and returns the current
// window's index and reset instant.
func windowBounds(now time.Time, window time.Duration) (index int64, resetAt time.Time) {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	index = now.Unix() / secs
	resetAt = time.Unix((index+1)*secs, 0)
	return index, resetAt
}

// Package aggregate assembles the analytics payload: it fans out to every
// counter dimension concurrently, merges the results by post slug and
// computes summary statistics and rankings. A failing dimension degrades
// to zeros; it never fails the whole aggregation.
package aggregate

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"blogmetrics/internal/catalog"
	"blogmetrics/internal/counters"
)

// Source is the set of independent counter reads the engine fans out to.
// *counters.Store satisfies it.
type Source interface {
	Views(ctx context.Context, slugs []string) (map[string]uint64, error)
	Views24h(ctx context.Context, slugs []string) (map[string]uint64, error)
	ViewsRange(ctx context.Context, slugs []string, days int) (map[string]uint64, error)
	Shares(ctx context.Context, slugs []string) (map[string]uint64, error)
	Shares24h(ctx context.Context, slugs []string) (map[string]uint64, error)
	Comments(ctx context.Context, slugs []string) (map[string]uint64, error)
	Comments24h(ctx context.Context, slugs []string) (map[string]uint64, error)
	Trending(ctx context.Context) ([]counters.TrendingEntry, error)
	VercelMetrics(ctx context.Context) (*counters.VercelMetrics, string, error)
}

// ErrInvalidDays is a caller error: the date range must be 1..365 days.
var ErrInvalidDays = errors.New("days must be an integer between 1 and 365")

// PostCounters is the merged per-post record. Missing data from any one
// source is 0, never null.
type PostCounters struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`

	Views       uint64 `json:"views"`
	Views24h    uint64 `json:"views24h"`
	ViewsRange  uint64 `json:"viewsRange"`
	Shares      uint64 `json:"shares"`
	Shares24h   uint64 `json:"shares24h"`
	Comments    uint64 `json:"comments"`
	Comments24h uint64 `json:"comments24h"`
}

// TopPost points at the single best post for one dimension.
type TopPost struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Count uint64 `json:"count"`
}

// Summary carries totals, rounded means and the top post for each of the
// seven count dimensions. Recomputed per request, never cached here.
type Summary struct {
	TotalViews   uint64 `json:"totalViews"`
	AverageViews uint64 `json:"averageViews"`

	TotalViews24h   uint64 `json:"totalViews24h"`
	AverageViews24h uint64 `json:"averageViews24h"`

	TotalViewsRange   uint64 `json:"totalViewsRange"`
	AverageViewsRange uint64 `json:"averageViewsRange"`

	TotalShares   uint64 `json:"totalShares"`
	AverageShares uint64 `json:"averageShares"`

	TotalShares24h   uint64 `json:"totalShares24h"`
	AverageShares24h uint64 `json:"averageShares24h"`

	TotalComments   uint64 `json:"totalComments"`
	AverageComments uint64 `json:"averageComments"`

	TotalComments24h   uint64 `json:"totalComments24h"`
	AverageComments24h uint64 `json:"averageComments24h"`

	TopByViews       *TopPost `json:"topByViews,omitempty"`
	TopByViews24h    *TopPost `json:"topByViews24h,omitempty"`
	TopByViewsRange  *TopPost `json:"topByViewsRange,omitempty"`
	TopByShares      *TopPost `json:"topByShares,omitempty"`
	TopByShares24h   *TopPost `json:"topByShares24h,omitempty"`
	TopByComments    *TopPost `json:"topByComments,omitempty"`
	TopByComments24h *TopPost `json:"topByComments24h,omitempty"`
}

// TrendingPost is one row of the trending block: either a cached entry
// resolved against the merged posts (Score set) or a fallback row ranked
// by total views (Score nil).
type TrendingPost struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Views    uint64   `json:"views"`
	Views24h uint64   `json:"views24h,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// Report is the full aggregation result.
type Report struct {
	Posts    []PostCounters
	Summary  Summary
	Trending []TrendingPost

	Vercel           *counters.VercelMetrics
	VercelLastSynced string
}

type Engine struct {
	source Source
}

func New(source Source) *Engine {
	return &Engine{source: source}
}

// ValidateDays checks the date-range parameter: nil means all time,
// otherwise 1..365.
func ValidateDays(days *int) error {
	if days == nil {
		return nil
	}
	if *days < 1 || *days > 365 {
		return ErrInvalidDays
	}
	return nil
}

// Aggregate builds the report for the given catalog. posts must be in
// catalog order; that order is the tie-break for every ranking. days nil
// means all time, in which case the range dimension mirrors total views.
func (e *Engine) Aggregate(ctx context.Context, posts []catalog.Post, days *int) (*Report, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	slugs := make([]string, len(posts))
	for i, p := range posts {
		slugs[i] = p.Slug
	}

	// Fan out: every dimension resolves or fails on its own. A failed
	// branch leaves its map nil and every lookup defaults to zero.
	var (
		views, views24h, viewsRange map[string]uint64
		shares, shares24h           map[string]uint64
		comments, comments24h       map[string]uint64
		trending                    []counters.TrendingEntry
		vercel                      *counters.VercelMetrics
		vercelSynced                string
	)

	var wg sync.WaitGroup
	fetch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Printf("aggregate: %s source degraded: %v", name, err)
			}
		}()
	}

	fetch("views", func() (err error) {
		views, err = e.source.Views(ctx, slugs)
		return err
	})
	fetch("views24h", func() (err error) {
		views24h, err = e.source.Views24h(ctx, slugs)
		return err
	})
	if days != nil {
		d := *days
		fetch("viewsRange", func() (err error) {
			viewsRange, err = e.source.ViewsRange(ctx, slugs, d)
			return err
		})
	}
	fetch("shares", func() (err error) {
		shares, err = e.source.Shares(ctx, slugs)
		return err
	})
	fetch("shares24h", func() (err error) {
		shares24h, err = e.source.Shares24h(ctx, slugs)
		return err
	})
	fetch("comments", func() (err error) {
		comments, err = e.source.Comments(ctx, slugs)
		return err
	})
	fetch("comments24h", func() (err error) {
		comments24h, err = e.source.Comments24h(ctx, slugs)
		return err
	})
	fetch("trending", func() (err error) {
		trending, err = e.source.Trending(ctx)
		return err
	})
	fetch("vercel", func() (err error) {
		vercel, vercelSynced, err = e.source.VercelMetrics(ctx)
		return err
	})
	wg.Wait()

	// Merge in catalog order; this slice keeps that order so summary
	// tie-breaks stay stable.
	merged := make([]PostCounters, len(posts))
	for i, p := range posts {
		pc := PostCounters{
			Slug:        p.Slug,
			Title:       p.Title,
			PublishedAt: p.PublishedAt,
			Views:       views[p.Slug],
			Views24h:    views24h[p.Slug],
			Shares:      shares[p.Slug],
			Shares24h:   shares24h[p.Slug],
			Comments:    comments[p.Slug],
			Comments24h: comments24h[p.Slug],
		}
		if days != nil {
			pc.ViewsRange = viewsRange[p.Slug]
		} else {
			pc.ViewsRange = pc.Views
		}
		merged[i] = pc
	}

	report := &Report{
		Summary:          summarize(merged),
		Trending:         resolveTrending(trending, merged),
		Vercel:           vercel,
		VercelLastSynced: vercelSynced,
	}

	// Default listing order: views descending, catalog order on ties.
	listed := make([]PostCounters, len(merged))
	copy(listed, merged)
	sort.SliceStable(listed, func(i, j int) bool { return listed[i].Views > listed[j].Views })
	report.Posts = listed

	return report, nil
}

// summarize computes sum, rounded mean and top post for every dimension.
// posts must be in catalog order.
func summarize(posts []PostCounters) Summary {
	var s Summary
	s.TotalViews, s.AverageViews, s.TopByViews = dimension(posts, func(p PostCounters) uint64 { return p.Views })
	s.TotalViews24h, s.AverageViews24h, s.TopByViews24h = dimension(posts, func(p PostCounters) uint64 { return p.Views24h })
	s.TotalViewsRange, s.AverageViewsRange, s.TopByViewsRange = dimension(posts, func(p PostCounters) uint64 { return p.ViewsRange })
	s.TotalShares, s.AverageShares, s.TopByShares = dimension(posts, func(p PostCounters) uint64 { return p.Shares })
	s.TotalShares24h, s.AverageShares24h, s.TopByShares24h = dimension(posts, func(p PostCounters) uint64 { return p.Shares24h })
	s.TotalComments, s.AverageComments, s.TopByComments = dimension(posts, func(p PostCounters) uint64 { return p.Comments })
	s.TotalComments24h, s.AverageComments24h, s.TopByComments24h = dimension(posts, func(p PostCounters) uint64 { return p.Comments24h })
	return s
}

func dimension(posts []PostCounters, get func(PostCounters) uint64) (total, average uint64, top *TopPost) {
	if len(posts) == 0 {
		return 0, 0, nil
	}
	best := 0
	for i, p := range posts {
		v := get(p)
		total += v
		if v > get(posts[best]) {
			best = i // strictly greater: ties keep the earlier catalog entry
		}
	}
	// Mean rounded to nearest integer.
	average = (total + uint64(len(posts))/2) / uint64(len(posts))
	top = &TopPost{Slug: posts[best].Slug, Title: posts[best].Title, Count: get(posts[best])}
	return total, average, top
}

const trendingFallbackSize = 5

// resolveTrending maps cached entries onto the merged posts. If the cache
// is absent or none of its entries resolve, it falls back to the top
// posts by total views with no score attached.
func resolveTrending(cached []counters.TrendingEntry, merged []PostCounters) []TrendingPost {
	bySlug := make(map[string]PostCounters, len(merged))
	for _, p := range merged {
		bySlug[p.Slug] = p
	}

	out := make([]TrendingPost, 0, len(cached))
	for _, entry := range cached {
		p, ok := bySlug[entry.Slug]
		if !ok {
			continue // stale cache entry for an unpublished or deleted post
		}
		score := entry.Score
		out = append(out, TrendingPost{
			Slug:     p.Slug,
			Title:    p.Title,
			Views:    p.Views,
			Views24h: p.Views24h,
			Score:    &score,
		})
	}
	if len(out) > 0 {
		return out
	}

	ranked := make([]PostCounters, len(merged))
	copy(ranked, merged)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Views > ranked[j].Views })
	if len(ranked) > trendingFallbackSize {
		ranked = ranked[:trendingFallbackSize]
	}
	out = make([]TrendingPost, len(ranked))
	for i, p := range ranked {
		out[i] = TrendingPost{Slug: p.Slug, Title: p.Title, Views: p.Views, Views24h: p.Views24h}
	}
	return out
}

package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"blogmetrics/internal/aggregate"
	"blogmetrics/internal/catalog"
	httpctx "blogmetrics/internal/http/ctx"
	"blogmetrics/internal/http/respond"
)

// Analytics serves the aggregated per-post analytics payload. The gate
// pipeline has already run by the time this handler executes; it only
// validates input, aggregates and assembles the success response.
func Analytics(db *gorm.DB, engine *aggregate.Engine) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		days, err := parseDays(ctx)
		if err != nil {
			respond.Error(ctx, fasthttp.StatusBadRequest, "Invalid days parameter",
				`days must be "all" or an integer between 1 and 365`)
			return
		}

		// The catalog is the one required dependency: without it there is
		// nothing to aggregate over.
		posts, err := catalog.Load(db)
		if err != nil {
			log.Printf("analytics: catalog unavailable: %v", err)
			respond.Unavailable(ctx)
			return
		}

		report, err := engine.Aggregate(ctx, posts, days)
		if errors.Is(err, aggregate.ErrInvalidDays) {
			respond.Error(ctx, fasthttp.StatusBadRequest, "Invalid days parameter",
				`days must be "all" or an integer between 1 and 365`)
			return
		}
		if err != nil {
			log.Printf("analytics: aggregation failed: %v", err)
			respond.Error(ctx, fasthttp.StatusInternalServerError, "Internal error", "")
			return
		}

		dateRange := "all"
		if days != nil {
			dateRange = fmt.Sprintf("%dd", *days)
		}

		var lastSynced any
		if report.VercelLastSynced != "" {
			lastSynced = report.VercelLastSynced
		}

		respond.CacheHeaders(ctx)
		if res, ok := httpctx.RateLimitFromCtx(ctx); ok {
			respond.RateLimitHeaders(ctx, res)
		}
		respond.JSON(ctx, fasthttp.StatusOK, map[string]any{
			"success":          true,
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
			"dateRange":        dateRange,
			"summary":          report.Summary,
			"posts":            report.Posts,
			"trending":         report.Trending,
			"vercel":           report.Vercel,
			"vercelLastSynced": lastSynced,
		})
	}
}

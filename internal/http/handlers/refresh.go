package handlers

import (
	"log"

	"github.com/valyala/fasthttp"

	"blogmetrics/internal/counters"
	"blogmetrics/internal/http/respond"
)

// RefreshTrending marks the trending cache stale so the external refresh
// job recomputes it. A command dispatch, nothing more; the job itself
// lives outside this service.
func RefreshTrending(store *counters.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if err := store.RequestRefresh(ctx); err != nil {
			log.Printf("refresh: dispatch failed: %v", err)
			respond.Unavailable(ctx)
			return
		}
		respond.JSON(ctx, fasthttp.StatusAccepted, map[string]any{
			"success": true,
			"queued":  true,
		})
	}
}

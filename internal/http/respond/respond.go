// Package respond maps pipeline outcomes onto HTTP responses: status,
// envelope and headers for every success and failure class in one place,
// so routes cannot drift apart in what they disclose.
package respond

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"blogmetrics/internal/ratelimit"
)

func JSON(ctx *fasthttp.RequestCtx, status int, data map[string]any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

// Error writes the generic failure envelope {error, message?}.
func Error(ctx *fasthttp.RequestCtx, status int, errTitle, message string) {
	data := map[string]any{"error": errTitle}
	if message != "" {
		data["message"] = message
	}
	JSON(ctx, status, data)
}

// NotFound mimics the router's own unknown-route response so a blocked
// caller cannot tell the endpoint exists.
func NotFound(ctx *fasthttp.RequestCtx) {
	ctx.Error(fasthttp.StatusMessage(fasthttp.StatusNotFound), fasthttp.StatusNotFound)
}

// EnvironmentBlocked is the explicit 403 for a disallowed deployment
// environment; the code field is stable for machine consumption.
func EnvironmentBlocked(ctx *fasthttp.RequestCtx) {
	JSON(ctx, fasthttp.StatusForbidden, map[string]any{
		"error":   "Forbidden",
		"code":    "environment_blocked",
		"message": "Analytics is not available in this environment",
	})
}

// Unauthorized deliberately does not say whether the credential was
// missing or wrong.
func Unauthorized(ctx *fasthttp.RequestCtx) {
	Error(ctx, fasthttp.StatusUnauthorized, "Unauthorized", "A valid bearer token is required")
}

// RateLimitHeaders exposes the current quota on any response that made it
// past the limiter, and on 429s.
func RateLimitHeaders(ctx *fasthttp.RequestCtx, res ratelimit.Result) {
	ctx.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	ctx.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	ctx.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// TooManyRequests writes the 429 envelope with Retry-After derived from
// the window reset.
func TooManyRequests(ctx *fasthttp.RequestCtx, res ratelimit.Result) {
	retryAfter := int(time.Until(res.ResetAt).Seconds()) + 1
	if retryAfter < 1 {
		retryAfter = 1
	}
	RateLimitHeaders(ctx, res)
	ctx.Response.Header.Set("Retry-After", strconv.Itoa(retryAfter))
	JSON(ctx, fasthttp.StatusTooManyRequests, map[string]any{
		"error":      "Too many requests",
		"message":    "Rate limit exceeded, slow down",
		"retryAfter": retryAfter,
	})
}

// CacheHeaders permits short-lived shared caching of the success payload;
// the data is not strictly real time.
func CacheHeaders(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Cache-Control", "public, s-maxage=300, stale-while-revalidate=600")
}

// Unavailable is the minimal, header-less reply for a connectivity
// failure to a required dependency. No envelope: nothing to leak.
func Unavailable(ctx *fasthttp.RequestCtx) {
	ctx.Response.Reset()
	ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
}

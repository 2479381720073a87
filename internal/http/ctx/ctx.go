package ctx

import (
	"github.com/valyala/fasthttp"

	"blogmetrics/internal/ratelimit"
)

const (
	ClientIPKey  = "clientIP"
	RateLimitKey = "rateLimit"
)

func SetClientIP(ctx *fasthttp.RequestCtx, ip string) {
	ctx.SetUserValue(ClientIPKey, ip)
}

func ClientIPFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(ClientIPKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func SetRateLimit(ctx *fasthttp.RequestCtx, res ratelimit.Result) {
	ctx.SetUserValue(RateLimitKey, res)
}

func RateLimitFromCtx(ctx *fasthttp.RequestCtx) (ratelimit.Result, bool) {
	v := ctx.UserValue(RateLimitKey)
	if v == nil {
		return ratelimit.Result{}, false
	}
	res, ok := v.(ratelimit.Result)
	return res, ok
}

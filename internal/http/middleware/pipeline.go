package middleware

import (
	"net"

	"github.com/valyala/fasthttp"

	"blogmetrics/internal/audit"
	"blogmetrics/internal/auth"
	"blogmetrics/internal/gate"
	httpctx "blogmetrics/internal/http/ctx"
	"blogmetrics/internal/http/respond"
	"blogmetrics/internal/ratelimit"
)

// Deps are the long-lived collaborators shared by every gated route,
// constructed once at startup and injected here.
type Deps struct {
	Gate    *gate.Gate
	Limiter *ratelimit.Limiter
	Audit   *audit.Logger
}

// RouteOptions parameterize the pipeline per route: each route carries
// its own secret and its own rate-limit budget.
type RouteOptions struct {
	Name      string
	Secret    string
	RateLimit ratelimit.Config
}

// Pipeline applies the four gate checks in strict order (origin,
// environment, credential, rate limit): cheapest and safest to fail
// first. Every outcome, allowed or denied, goes through the audit log.
func Pipeline(deps Deps, opts RouteOptions) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	authenticator := auth.New(opts.Secret)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ip := clientIP(ctx.RemoteAddr())
			entry := audit.Entry{
				Route:     opts.Name,
				ClientIP:  ip,
				UserAgent: string(ctx.UserAgent()),
				Query:     string(ctx.QueryArgs().QueryString()),
			}

			// Origin, then environment. Runs before any credential work
			// so no cycles are spent on traffic that should never be here.
			if d := deps.Gate.Evaluate(ctx.RemoteAddr()); !d.Allowed {
				deny(ctx, deps.Audit, entry, d.Reason, ratelimit.Result{})
				return
			}

			if d := authenticator.Authenticate(ctx.Request.Header.Peek("Authorization")); !d.Allowed {
				deny(ctx, deps.Audit, entry, d.Reason, ratelimit.Result{})
				return
			}

			res := deps.Limiter.Check(ctx, opts.Name, ip, opts.RateLimit)
			if !res.Allowed {
				deny(ctx, deps.Audit, entry, gate.ReasonRateLimited, res)
				return
			}

			entry.Outcome = audit.OutcomeAllowed
			entry.Reason = gate.ReasonNone
			deps.Audit.Record(entry)

			httpctx.SetClientIP(ctx, ip)
			httpctx.SetRateLimit(ctx, res)
			next(ctx)
		}
	}
}

func deny(ctx *fasthttp.RequestCtx, logger *audit.Logger, entry audit.Entry, reason gate.Reason, res ratelimit.Result) {
	entry.Outcome = audit.OutcomeDenied
	entry.Reason = reason
	logger.Record(entry)

	switch reason {
	case gate.ReasonExternalOrigin:
		respond.NotFound(ctx)
	case gate.ReasonEnvironmentBlocked:
		respond.EnvironmentBlocked(ctx)
	case gate.ReasonInvalidCredential:
		respond.Unauthorized(ctx)
	case gate.ReasonRateLimited:
		respond.TooManyRequests(ctx, res)
	default:
		respond.Error(ctx, fasthttp.StatusForbidden, "Forbidden", "")
	}
}

func clientIP(remote net.Addr) string {
	if remote == nil {
		return "unknown"
	}
	if tcp, ok := remote.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(remote.String())
	if err != nil || host == "" {
		return remote.String()
	}
	return host
}

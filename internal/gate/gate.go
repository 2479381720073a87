package gate

import (
	"net"

	"blogmetrics/internal/config"
)

// Reason classifies why a request was denied by the gate pipeline.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonExternalOrigin
	ReasonEnvironmentBlocked
	ReasonInvalidCredential
	ReasonRateLimited
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonExternalOrigin:
		return "external_origin"
	case ReasonEnvironmentBlocked:
		return "environment_blocked"
	case ReasonInvalidCredential:
		return "invalid_credential"
	case ReasonRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a single gate check. Produced fresh per
// request, never persisted.
type Decision struct {
	Allowed bool
	Reason  Reason
}

const (
	envDevelopment = "development"
	envProduction  = "production"
)

// Gate blocks traffic from outside the trusted network and traffic in
// environments where the analytics routes must not exist. It runs before
// any credential check so no work is spent on traffic that should never
// reach the route at all.
type Gate struct {
	env     string
	allowed map[string]struct{}
}

func New(cfg *config.Config) *Gate {
	g := &Gate{
		env:     cfg.Environment,
		allowed: make(map[string]struct{}, len(cfg.AllowedEnvs)),
	}
	for _, env := range cfg.AllowedEnvs {
		g.allowed[env] = struct{}{}
	}
	return g
}

// Evaluate checks origin first, then environment. The first failing check
// wins; environment is never consulted for an external caller.
func (g *Gate) Evaluate(remote net.Addr) Decision {
	if !g.trustedOrigin(remote) {
		return Decision{Reason: ReasonExternalOrigin}
	}
	if !g.environmentAllowed() {
		return Decision{Reason: ReasonEnvironmentBlocked}
	}
	return Decision{Allowed: true, Reason: ReasonNone}
}

// trustedOrigin reports whether the connection comes from the loopback or
// an internal network. Development skips the check so local tooling can
// hit the route through port forwards.
func (g *Gate) trustedOrigin(remote net.Addr) bool {
	if g.env == envDevelopment {
		return true
	}
	ip := remoteIP(remote)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}

// environmentAllowed applies the allow-list. "production" is denied
// unconditionally, even if someone lists it; "development" is always
// allowed; anything else must be listed explicitly.
func (g *Gate) environmentAllowed() bool {
	switch g.env {
	case envProduction:
		return false
	case envDevelopment:
		return true
	}
	_, ok := g.allowed[g.env]
	return ok
}

func remoteIP(remote net.Addr) net.IP {
	if remote == nil {
		return nil
	}
	if tcp, ok := remote.(*net.TCPAddr); ok {
		return tcp.IP
	}
	host, _, err := net.SplitHostPort(remote.String())
	if err != nil {
		host = remote.String()
	}
	return net.ParseIP(host)
}

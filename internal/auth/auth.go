package auth

import (
	"bytes"
	"crypto/subtle"

	"blogmetrics/internal/gate"
)

// SecretsEqual reports whether provided matches expected without leaking
// timing information about where the first mismatching byte sits. The
// length check is allowed to be fast (length is not a secret); the byte
// comparison after it is constant-time. An empty expected secret means
// authentication is disabled entirely and nothing matches.
func SecretsEqual(provided, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	if len(provided) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare(provided, expected) == 1
}

const bearerPrefix = "Bearer "

// Authenticator validates Bearer credentials against a single configured
// shared secret.
type Authenticator struct {
	secret []byte
}

func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate checks the raw Authorization header value. A missing or
// malformed header denies without ever touching the comparator. The raw
// credential is never part of the returned decision, so callers cannot
// accidentally log it.
func (a *Authenticator) Authenticate(header []byte) gate.Decision {
	if len(header) == 0 {
		return gate.Decision{Reason: gate.ReasonInvalidCredential}
	}
	if !bytes.HasPrefix(header, []byte(bearerPrefix)) {
		return gate.Decision{Reason: gate.ReasonInvalidCredential}
	}
	token := bytes.TrimSpace(header[len(bearerPrefix):])
	if len(token) == 0 {
		return gate.Decision{Reason: gate.ReasonInvalidCredential}
	}
	if !SecretsEqual(token, a.secret) {
		return gate.Decision{Reason: gate.ReasonInvalidCredential}
	}
	return gate.Decision{Allowed: true, Reason: gate.ReasonNone}
}

// Package admission decides whether an inbound tool call may proceed.
//
// Every call passes three checks in a fixed order: authentication,
// rate limiting, then argument validation. The first failing check
// wins and produces exactly one rejection reason; later checks are not
// evaluated. Rejection messages sent to clients are fixed strings;
// the detail (which field, what length, which client) goes to the
// server log only.
package admission

import "crypto/subtle"

// Credential is the process-wide shared secret. The zero value means
// authentication is disabled and every presented token is accepted.
// Modeled as an explicit enabled/disabled pair rather than a bare
// string so both paths are visible at every call site.
type Credential struct {
	enabled bool
	secret  []byte
}

// NoCredential returns a disabled credential: all callers are accepted.
func NoCredential() Credential {
	return Credential{}
}

// RequireToken returns a credential that accepts only the given secret.
// An empty secret disables authentication, matching the configuration
// contract (absent token = open server).
func RequireToken(secret string) Credential {
	if secret == "" {
		return NoCredential()
	}
	return Credential{enabled: true, secret: []byte(secret)}
}

// Enabled reports whether authentication is enforced.
func (c Credential) Enabled() bool {
	return c.enabled
}

// Authenticate checks a presented bearer token. Comparison is
// constant-time to avoid leaking secret length prefixes through
// timing. Lockout and backoff are deliberately not handled here;
// abusive retry traffic is the rate limiter's job.
func (c Credential) Authenticate(presented string) bool {
	if !c.enabled {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(presented), c.secret) == 1
}

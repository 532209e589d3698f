package admission

import (
	"log/slog"
	"net/http"
)

// Reason classifies why a call was rejected.
type Reason string

const (
	ReasonUnauthorized Reason = "unauthorized"
	ReasonRateLimited  Reason = "rate_limited"
	ReasonInvalidInput Reason = "invalid_input"
)

// Client-facing rejection messages. Fixed per reason: no request data
// ever appears here.
const (
	msgUnauthorized = "Unauthorized"
	msgRateLimited  = "Rate limit exceeded. Please try again later."
	msgInvalidInput = "Invalid input"
)

// Call is one inbound tool invocation as seen by the gate.
type Call struct {
	// ClientID keys the rate limiter, normally the network origin.
	ClientID string
	// Token is the presented bearer credential, already stripped of
	// the "Bearer " prefix. Empty when the client sent none.
	Token string
	// Validate checks the call's arguments. Nil means the call carries
	// no arguments to check (e.g. an HTTP connection handshake).
	Validate func() *FieldError
}

// Verdict is the gate's admission decision.
type Verdict struct {
	Allowed bool
	Reason  Reason
	// Message is the fixed client-facing string for the reason.
	Message string
}

// Proceed is the verdict for an admitted call.
var Proceed = Verdict{Allowed: true}

// Status maps a rejection reason to its HTTP-equivalent status code.
func (v Verdict) Status() int {
	switch v.Reason {
	case ReasonUnauthorized:
		return http.StatusUnauthorized
	case ReasonRateLimited:
		return http.StatusTooManyRequests
	case ReasonInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// Gate composes the authenticator, rate limiter, and validator into a
// single admission decision. It owns no global state: the limiter and
// credential are injected at construction so tests get isolated
// instances and a fake clock.
type Gate struct {
	credential Credential
	limiter    *Limiter
	log        *slog.Logger
}

// NewGate builds a gate. logger may be nil, in which case the default
// slog logger is used.
func NewGate(credential Credential, limiter *Limiter, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{credential: credential, limiter: limiter, log: logger}
}

// Admit runs the admission pipeline. Order is fixed and significant:
// authenticate first (don't spend rate-limit budget on unauthenticated
// traffic), rate-limit second (don't validate abusive traffic), then
// validate. The first failing stage short-circuits.
func (g *Gate) Admit(call Call) Verdict {
	if !g.credential.Authenticate(call.Token) {
		g.log.Warn("unauthorized access attempt", "client", call.ClientID)
		return Verdict{Reason: ReasonUnauthorized, Message: msgUnauthorized}
	}

	if d := g.limiter.Allow(call.ClientID); !d.Allowed {
		g.log.Warn("rate limit exceeded", "client", call.ClientID, "reset_at", d.ResetAt)
		return Verdict{Reason: ReasonRateLimited, Message: msgRateLimited}
	}

	if call.Validate != nil {
		if err := call.Validate(); err != nil {
			// The offending value stays server-side: log field and
			// detail, return only the generic message.
			g.log.Warn("invalid input rejected",
				"client", call.ClientID, "field", err.Field, "detail", err.Detail)
			return Verdict{Reason: ReasonInvalidInput, Message: err.Message}
		}
	}

	return Proceed
}

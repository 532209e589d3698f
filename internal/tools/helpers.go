// Package tools implements the MCP tool handlers for the EVE
// University wiki server.
//
// Each tool is a struct that receives its dependencies (admission
// gate, wiki client) at construction and exposes a Definition for
// registration plus a Handle compatible with mcp-go's CallToolRequest
// signature. One file per tool.
//
// Every handler admits the call through the gate before doing any
// work: authentication, rate limiting, and argument validation run in
// that fixed order, and a rejected call returns the gate's fixed
// client-facing message.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
)

// Limits carries the configured maximum lengths for validated string
// arguments.
type Limits struct {
	ShortField int // identifiers such as category names
	TextField  int // queries and page titles
	Freeform   int // planner freeform notes
}

// callerKey is the context key under which transports store the
// caller's identity.
type callerKey struct{}

// Caller identifies the origin of a tool call for admission control.
type Caller struct {
	// ID buckets the rate limiter; the network origin for HTTP
	// transports, "local" for stdio.
	ID string
	// Token is the presented bearer credential, if any.
	Token string
}

// WithCaller attaches a caller identity to the context.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom extracts the caller identity, defaulting to "unknown"
// when the transport attached none. Unknown callers share one
// rate-limit bucket, which fails safe.
func CallerFrom(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Caller{ID: "unknown"}
}

// admit runs the gate for a tool call. Returns a non-nil error result
// when the call is rejected.
func admit(ctx context.Context, gate *admission.Gate, validate func() *admission.FieldError) *mcp.CallToolResult {
	caller := CallerFrom(ctx)
	verdict := gate.Admit(admission.Call{
		ClientID: caller.ID,
		Token:    caller.Token,
		Validate: validate,
	})
	if verdict.Allowed {
		return nil
	}
	return mcp.NewToolResultError(verdict.Message)
}

// intArg extracts an integer argument, returning defaultVal if the
// key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// floatArg extracts a float argument from a tool request.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stringListArg extracts a string-array argument. Non-string elements
// are dropped rather than failing the whole call.
func stringListArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// clampLimit bounds a result-count argument to [1, max], using def
// when the client sent nothing usable.
func clampLimit(value, def, max int) int {
	if value <= 0 {
		return def
	}
	if value > max {
		return max
	}
	return value
}

package admission

import (
	"sync"
	"time"
)

// Limiter applies a fixed-window request quota per client key.
//
// Each client owns one window: a counter and the instant the window
// opened. A request is allowed while the counter is below the limit;
// when the window elapses the next request resets it. Check and
// increment happen under one lock, so two concurrent requests from the
// same client can never both claim the last slot.
//
// Fixed window over sliding log: O(1) memory per client, and edge
// fairness does not matter for abuse prevention.
type Limiter struct {
	limit  int
	window time.Duration

	// now is injectable so tests can drive a fake clock.
	now func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientWindow
	lastSweep time.Time
}

type clientWindow struct {
	count    int
	start    time.Time
	lastSeen time.Time
}

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// NewLimiter creates a limiter allowing limit requests per window.
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}
}

// WithClock replaces the limiter's time source. Test hook; returns the
// limiter for chaining.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records one request for clientID and reports whether it fits
// inside the current window.
func (l *Limiter) Allow(clientID string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)

	w, ok := l.clients[clientID]
	if !ok || now.Sub(w.start) >= l.window {
		// New client or elapsed window: reset to count=1.
		l.clients[clientID] = &clientWindow{count: 1, start: now, lastSeen: now}
		return Decision{Allowed: true, Remaining: l.limit - 1, ResetAt: now.Add(l.window)}
	}

	w.lastSeen = now
	if w.count >= l.limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: w.start.Add(l.window)}
	}
	w.count++
	return Decision{Allowed: true, Remaining: l.limit - w.count, ResetAt: w.start.Add(l.window)}
}

// staleAfter is how long an untouched window survives before the sweep
// drops it. Three window lengths keeps memory bounded under client
// churn without ever evicting a live window.
const staleAfter = 3

// sweepLocked removes idle client windows. Runs at most once per
// window length, on access, so no background goroutine is needed and
// a fake clock drives it naturally in tests.
func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-staleAfter * l.window)
	for id, w := range l.clients {
		if w.lastSeen.Before(cutoff) {
			delete(l.clients, id)
		}
	}
}

// Len reports the number of tracked clients. Used by tests to check
// eviction.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

package admission

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source for limiter tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_AllowsUpToLimitThenDenies(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(60, time.Minute).WithClock(clock.Now)

	for i := 0; i < 60; i++ {
		d := l.Allow("10.0.0.1")
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 60-(i+1), d.Remaining)
	}

	// The 61st request within the same window is denied.
	d := l.Allow("10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)
}

func TestLimiter_WindowElapseResetsCounter(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(2, time.Minute).WithClock(clock.Now)

	require.True(t, l.Allow("c").Allowed)
	require.True(t, l.Allow("c").Allowed)
	require.False(t, l.Allow("c").Allowed)

	clock.Advance(time.Minute)

	d := l.Allow("c")
	assert.True(t, d.Allowed, "first request of the new window")
	assert.Equal(t, 1, d.Remaining, "counter reset to 1 after elapse")
}

func TestLimiter_PartialWindowDoesNotReset(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(1, time.Minute).WithClock(clock.Now)

	require.True(t, l.Allow("c").Allowed)
	clock.Advance(59 * time.Second)
	assert.False(t, l.Allow("c").Allowed, "window has not elapsed yet")
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(1, time.Minute).WithClock(clock.Now)

	require.True(t, l.Allow("a").Allowed)
	require.False(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("b").Allowed, "b has its own window")
}

func TestLimiter_SweepEvictsIdleClients(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(10, time.Minute).WithClock(clock.Now)

	for i := 0; i < 50; i++ {
		l.Allow(fmt.Sprintf("client-%d", i))
	}
	require.Equal(t, 50, l.Len())

	// Past the staleness horizon, the next request triggers a sweep
	// that drops every idle window.
	clock.Advance(4 * time.Minute)
	l.Allow("fresh")
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_SweepKeepsActiveClient(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(1000, time.Minute).WithClock(clock.Now)

	l.Allow("idle")
	for i := 0; i < 5; i++ {
		clock.Advance(time.Minute)
		l.Allow("busy")
	}

	assert.LessOrEqual(t, l.Len(), 2)
	// The busy client's fresh window is still tracked.
	d := l.Allow("busy")
	assert.True(t, d.Allowed)
}

// No two concurrent requests may both claim the last slot: run many
// goroutines against a single remaining slot and count admissions.
func TestLimiter_ConcurrentCheckAndIncrementIsAtomic(t *testing.T) {
	l := NewLimiter(100, time.Minute)

	const workers = 200
	var wg sync.WaitGroup
	allowed := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("same-client").Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 100, count, "exactly limit admissions under contention")
}

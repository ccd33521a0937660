package engine

import (
	"sync"
	"time"
)

// Guard is the single critical section around native engine entry. No two
// guarded functions run at the same time.
type Guard struct {
	mu     sync.Mutex
	onWait func(time.Duration)
}

// Do runs fn while holding the guard. The time spent waiting for the guard
// is reported to the wait observer, if any.
func (g *Guard) Do(fn func()) {
	start := time.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.onWait != nil {
		g.onWait(time.Since(start))
	}
	fn()
}

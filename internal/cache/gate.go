package cache

import "sync"

// Gate serializes refresh operations. A second refresh while one is
// running is rejected fail-fast rather than queued. The flag is
// process-local and never persisted.
type Gate struct {
	mu         sync.Mutex
	inProgress bool
}

// NewGate creates an idle gate.
func NewGate() *Gate {
	return &Gate{}
}

// TryBegin marks a refresh as running. It returns false, without
// blocking, when one is already in flight.
func (g *Gate) TryBegin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inProgress {
		return false
	}
	g.inProgress = true
	return true
}

// End clears the flag. Callers must run it on every exit path of a
// refresh, success or failure, typically via defer.
func (g *Gate) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inProgress = false
}

// InProgress reports whether a refresh is currently running.
func (g *Gate) InProgress() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inProgress
}

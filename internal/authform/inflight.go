package authform

import "sync"

// InFlight tracks the form IDs with a submission currently pending, so a
// repeated submit of the same form cannot reach the backend twice.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewInFlight creates an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]struct{})}
}

// Acquire marks id as pending. It returns false if id is already pending.
func (g *InFlight) Acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.ids[id]; ok {
		return false
	}
	g.ids[id] = struct{}{}
	return true
}

// Release clears id.
func (g *InFlight) Release(id string) {
	g.mu.Lock()
	delete(g.ids, id)
	g.mu.Unlock()
}

// Len returns the number of pending submissions.
func (g *InFlight) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids)
}

package remote

import "sync"

// LoadState tracks where a resource category stands in its fetch cycle.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateFailed
)

// String returns the lowercase state name for logs and sync status payloads.
func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Resource names a category guarded against overlapping fetches.
type Resource string

const (
	ResourceClients     Resource = "clients"
	ResourceServices    Resource = "services"
	ResourceCompanies   Resource = "companies"
	ResourceEngagements Resource = "engagements"
)

// Guard deduplicates in-flight fetches per resource category. A second
// request for a category that is already loading is skipped, not queued.
// The zero value is not usable; construct with NewGuard.
type Guard struct {
	mu     sync.Mutex
	states map[Resource]LoadState
}

// NewGuard returns a guard with every resource idle.
func NewGuard() *Guard {
	return &Guard{states: make(map[Resource]LoadState)}
}

// Request tries to claim the resource for a fetch. It returns false when
// a fetch for the same resource is already in flight, in which case the
// caller must skip its fetch entirely.
func (g *Guard) Request(r Resource) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.states[r] == StateLoading {
		return false
	}
	g.states[r] = StateLoading
	return true
}

// Complete marks a claimed fetch as finished successfully.
func (g *Guard) Complete(r Resource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states[r] = StateLoaded
}

// Fail marks a claimed fetch as failed. A later Request may retry.
func (g *Guard) Fail(r Resource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states[r] = StateFailed
}

// State reports the current state of a resource.
func (g *Guard) State(r Resource) LoadState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[r]
}

// States returns a snapshot of every tracked resource state, keyed by
// resource name, for the sync status endpoint.
func (g *Guard) States() map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]string, len(g.states))
	for r, s := range g.states {
		out[string(r)] = s.String()
	}
	return out
}

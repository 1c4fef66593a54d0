package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardRequestClaimsResource(t *testing.T) {
	g := NewGuard()

	assert.Equal(t, StateIdle, g.State(ResourceEngagements))
	assert.True(t, g.Request(ResourceEngagements))
	assert.Equal(t, StateLoading, g.State(ResourceEngagements))
}

func TestGuardOverlappingRequestSkipped(t *testing.T) {
	g := NewGuard()

	assert.True(t, g.Request(ResourceClients))
	assert.False(t, g.Request(ResourceClients), "second fetch for a loading resource must be skipped")

	g.Complete(ResourceClients)
	assert.Equal(t, StateLoaded, g.State(ResourceClients))
	assert.True(t, g.Request(ResourceClients), "a finished resource may be fetched again")
}

func TestGuardResourcesAreIndependent(t *testing.T) {
	g := NewGuard()

	assert.True(t, g.Request(ResourceClients))
	assert.True(t, g.Request(ResourceServices))
	assert.True(t, g.Request(ResourceCompanies))
	assert.True(t, g.Request(ResourceEngagements))
}

func TestGuardFailAllowsRetry(t *testing.T) {
	g := NewGuard()

	assert.True(t, g.Request(ResourceEngagements))
	g.Fail(ResourceEngagements)
	assert.Equal(t, StateFailed, g.State(ResourceEngagements))
	assert.True(t, g.Request(ResourceEngagements))
}

func TestGuardStatesSnapshot(t *testing.T) {
	g := NewGuard()
	g.Request(ResourceClients)
	g.Request(ResourceEngagements)
	g.Complete(ResourceEngagements)

	states := g.States()
	assert.Equal(t, "loading", states["clients"])
	assert.Equal(t, "loaded", states["engagements"])
}

func TestLoadStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "failed", StateFailed.String())
}

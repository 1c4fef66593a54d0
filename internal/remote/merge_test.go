package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washandgo/engagement-api/internal/domain"
)

func eng(id string, status domain.EngagementStatus) domain.Engagement {
	return domain.Engagement{
		BaseModel: domain.BaseModel{ID: id},
		Kind:      domain.KindService,
		Status:    status,
	}
}

func TestMergeRemoteWinsLocalOnlyPreserved(t *testing.T) {
	remote := []domain.Engagement{eng("1", domain.StatusEnvoye)}
	local := []domain.Engagement{
		eng("1", domain.StatusRealise),
		eng("2", domain.StatusBrouillon),
	}

	merged := Merge(remote, local)

	require.Len(t, merged, 2)
	assert.Equal(t, "1", merged[0].ID)
	assert.Equal(t, domain.StatusEnvoye, merged[0].Status, "remote copy wins for a shared id")
	assert.Equal(t, "2", merged[1].ID)
	assert.Equal(t, domain.StatusBrouillon, merged[1].Status, "local-only record survives")
}

func TestMergeIdempotent(t *testing.T) {
	remote := []domain.Engagement{
		eng("a", domain.StatusEnvoye),
		eng("b", domain.StatusPlanifie),
	}
	local := []domain.Engagement{
		eng("b", domain.StatusRealise),
		eng("c", domain.StatusBrouillon),
	}

	once := Merge(remote, local)
	twice := Merge(remote, once)

	assert.Equal(t, once, twice)
}

func TestMergeDuplicateFree(t *testing.T) {
	remote := []domain.Engagement{eng("x", domain.StatusEnvoye)}
	local := []domain.Engagement{
		eng("x", domain.StatusPlanifie),
		eng("y", domain.StatusPlanifie),
		eng("z", domain.StatusPlanifie),
	}

	merged := Merge(remote, local)

	seen := make(map[string]int)
	for _, e := range merged {
		seen[e.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %s appears more than once", id)
	}
	assert.Len(t, merged, 3)
}

func TestMergeEmptySides(t *testing.T) {
	local := []domain.Engagement{eng("1", domain.StatusPlanifie)}

	assert.Equal(t, local, Merge(nil, local))
	assert.Equal(t, local, Merge(local, nil))
	assert.Empty(t, Merge(nil, nil))
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	remote := []domain.Engagement{eng("1", domain.StatusEnvoye)}
	local := []domain.Engagement{eng("2", domain.StatusPlanifie)}

	_ = Merge(remote, local)

	assert.Equal(t, "1", remote[0].ID)
	assert.Len(t, remote, 1)
	assert.Len(t, local, 1)
}

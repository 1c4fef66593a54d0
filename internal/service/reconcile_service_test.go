package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/config"
	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/remote"
	"github.com/washandgo/engagement-api/internal/repository"
)

func newReconcileFixture(t *testing.T, handler http.Handler) (*ReconcileService, *repository.EngagementRepository) {
	t.Helper()

	db := setupTestDB(t)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := remote.NewClient(&config.RemoteConfig{
		Enabled:        true,
		BaseURL:        srv.URL,
		RequestTimeout: 5,
	}, zap.NewNop())
	require.NotNil(t, client)

	repo := repository.NewEngagementRepository(db)
	return NewReconcileService(client, repo, zap.NewNop()), repo
}

func remoteEngagement(id string, charge float64) map[string]any {
	return map[string]any{
		"id":               id,
		"clientId":         "cli-1",
		"serviceId":        "svc-1",
		"kind":             "service",
		"status":           "planifié",
		"scheduledAt":      time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		"additionalCharge": charge,
	}
}

func TestSyncEngagementsMergesRemoteOverLocal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			remoteEngagement("eng-1", 50),
			remoteEngagement("eng-3", 0),
		})
	})
	svc, repo := newReconcileFixture(t, handler)
	ctx := context.Background()

	// eng-1 exists locally with a diverged value, eng-2 is local only.
	require.NoError(t, repo.Create(ctx, &domain.Engagement{
		BaseModel: domain.BaseModel{ID: "eng-1"},
		ClientID:  "cli-1", ServiceID: "svc-1",
		Kind: domain.KindService, Status: domain.StatusPlanifie,
		AdditionalCharge: 10,
		ScheduledAt:      time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, repo.Create(ctx, &domain.Engagement{
		BaseModel: domain.BaseModel{ID: "eng-2"},
		ClientID:  "cli-1", ServiceID: "svc-1",
		Kind: domain.KindService, Status: domain.StatusPlanifie,
		ScheduledAt: time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC),
	}))

	count, err := svc.SyncEngagements(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	merged, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, merged, 3)

	byID := make(map[string]domain.Engagement, len(merged))
	for _, e := range merged {
		byID[e.ID] = e
	}
	assert.Equal(t, 50.0, byID["eng-1"].AdditionalCharge, "remote copy wins for shared ids")
	assert.Contains(t, byID, "eng-2", "local-only rows survive the merge")
	assert.Contains(t, byID, "eng-3")
}

func TestSyncEngagementsIsIdempotent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{remoteEngagement("eng-1", 0)})
	})
	svc, repo := newReconcileFixture(t, handler)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.SyncEngagements(ctx)
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncEngagementsFailureKeepsLocalState(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"maintenance"}`, http.StatusServiceUnavailable)
	})
	svc, repo := newReconcileFixture(t, handler)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Engagement{
		BaseModel: domain.BaseModel{ID: "eng-1"},
		ClientID:  "cli-1", ServiceID: "svc-1",
		Kind: domain.KindService, Status: domain.StatusPlanifie,
		ScheduledAt: time.Now(),
	}))

	_, err := svc.SyncEngagements(ctx)
	require.Error(t, err)

	all, listErr := repo.ListAll(ctx)
	require.NoError(t, listErr)
	assert.Len(t, all, 1, "a failed fetch never touches the store")

	// The failure is visible in the status report and a retry is allowed.
	var engagementState string
	for _, s := range svc.Status() {
		if s.Resource == string(remote.ResourceEngagements) {
			engagementState = s.State
			assert.NotEmpty(t, s.LastError)
		}
	}
	assert.Equal(t, "failed", engagementState)
}

func TestSyncEngagementsWithoutRemote(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewEngagementRepository(db)
	svc := NewReconcileService(nil, repo, zap.NewNop())

	_, err := svc.SyncEngagements(context.Background())
	assert.ErrorIs(t, err, ErrRemoteDisabled)
}

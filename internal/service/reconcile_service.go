package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/remote"
	"github.com/washandgo/engagement-api/internal/repository"
)

// ReconcileService pulls the authoritative engagement snapshot from the
// remote backend and merges it into the local store. The remote copy
// wins for every id it knows; engagements created locally and not yet
// round-tripped survive the merge. An in-flight guard skips overlapping
// syncs for the same resource instead of queueing them.
type ReconcileService struct {
	client      *remote.Client
	guard       *remote.Guard
	engagements *repository.EngagementRepository
	logger      *zap.Logger

	mu       sync.Mutex
	lastSync map[remote.Resource]time.Time
	lastErr  map[remote.Resource]string
}

func NewReconcileService(client *remote.Client, engagements *repository.EngagementRepository, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{
		client:      client,
		guard:       remote.NewGuard(),
		engagements: engagements,
		logger:      logger,
		lastSync:    make(map[remote.Resource]time.Time),
		lastErr:     make(map[remote.Resource]string),
	}
}

// SyncEngagements reconciles the local engagement store against the
// remote snapshot. Returns the size of the merged set.
func (s *ReconcileService) SyncEngagements(ctx context.Context) (int, error) {
	if !s.client.IsEnabled() {
		return 0, ErrRemoteDisabled
	}
	if !s.guard.Request(remote.ResourceEngagements) {
		return 0, ErrSyncInFlight
	}

	merged, err := s.syncLocked(ctx)
	if err != nil {
		s.guard.Fail(remote.ResourceEngagements)
		s.recordOutcome(remote.ResourceEngagements, err)
		return 0, err
	}

	s.guard.Complete(remote.ResourceEngagements)
	s.recordOutcome(remote.ResourceEngagements, nil)
	return merged, nil
}

func (s *ReconcileService) syncLocked(ctx context.Context) (int, error) {
	start := time.Now()

	remoteList, err := s.client.ListEngagements(ctx)
	if err != nil {
		s.logger.Warn("remote engagement fetch failed", zap.Error(err))
		return 0, err
	}

	localList, err := s.engagements.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load local engagements: %w", err)
	}

	mergedList := remote.Merge(remoteList, localList)
	if err := s.engagements.UpsertAll(ctx, mergedList); err != nil {
		return 0, fmt.Errorf("failed to persist merged engagements: %w", err)
	}

	pushed := s.pushLocalOnly(ctx, remoteList, localList)

	s.logger.Info("engagements reconciled",
		zap.Int("remote", len(remoteList)),
		zap.Int("local", len(localList)),
		zap.Int("merged", len(mergedList)),
		zap.Int("pushed", pushed),
		zap.Duration("duration", time.Since(start)),
	)
	return len(mergedList), nil
}

// pushLocalOnly writes engagements the remote has never seen upstream.
// Failures are logged and skipped; the next tick retries them.
func (s *ReconcileService) pushLocalOnly(ctx context.Context, remoteList, localList []domain.Engagement) int {
	remoteIDs := make(map[string]struct{}, len(remoteList))
	for i := range remoteList {
		remoteIDs[remoteList[i].ID] = struct{}{}
	}

	pushed := 0
	for i := range localList {
		e := &localList[i]
		if _, ok := remoteIDs[e.ID]; ok {
			continue
		}
		if _, err := s.client.UpdateEngagement(ctx, e); err != nil {
			s.logger.Warn("failed to push local engagement upstream",
				zap.String("engagement_id", e.ID),
				zap.Error(err),
			)
			continue
		}
		pushed++
	}
	return pushed
}

// Status reports the reconciliation state for every resource category.
func (s *ReconcileService) Status() []domain.SyncStatusDTO {
	resources := []remote.Resource{
		remote.ResourceClients,
		remote.ResourceServices,
		remote.ResourceCompanies,
		remote.ResourceEngagements,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]domain.SyncStatusDTO, 0, len(resources))
	for _, r := range resources {
		dto := domain.SyncStatusDTO{
			Resource:  string(r),
			State:     s.guard.State(r).String(),
			LastError: s.lastErr[r],
		}
		if at, ok := s.lastSync[r]; ok {
			dto.LastSyncAt = at.UTC().Format(time.RFC3339)
		}
		statuses = append(statuses, dto)
	}
	return statuses
}

func (s *ReconcileService) recordOutcome(r remote.Resource, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr[r] = err.Error()
		return
	}
	s.lastSync[r] = time.Now()
	s.lastErr[r] = ""
}

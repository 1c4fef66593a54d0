package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/service"
)

// ReconcileJobName is the name of the periodic engagement reconciliation job
const ReconcileJobName = "engagement_reconcile"

// DefaultReconcileTimeout bounds a single reconciliation run.
const DefaultReconcileTimeout = 2 * time.Minute

// EngagementSyncService defines the interface for reconciling engagements
// with the remote backend. It lets the job avoid a hard dependency on the
// concrete service type.
type EngagementSyncService interface {
	// SyncEngagements fetches the remote snapshot and merges it into the
	// local store. Returns the merged record count.
	SyncEngagements(ctx context.Context) (int, error)
}

// ReconcileJob periodically pulls the remote engagement snapshot and merges
// it into the local store.
type ReconcileJob struct {
	syncService EngagementSyncService
	logger      *zap.Logger
	timeout     time.Duration
}

// NewReconcileJob creates a new reconciliation job.
// The timeout controls how long one run is allowed to take.
func NewReconcileJob(syncService EngagementSyncService, logger *zap.Logger, timeout time.Duration) *ReconcileJob {
	if timeout <= 0 {
		timeout = DefaultReconcileTimeout
	}
	return &ReconcileJob{
		syncService: syncService,
		logger:      logger,
		timeout:     timeout,
	}
}

// Run executes one reconciliation pass.
// This is called by the scheduler according to the cron expression.
func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	merged, err := j.syncService.SyncEngagements(ctx)
	if err != nil {
		// An overlapping manual sync holds the guard; the next tick
		// will pick the work up.
		if errors.Is(err, service.ErrSyncInFlight) {
			j.logger.Info("reconciliation already running, skipping tick")
			return
		}
		j.logger.Error("engagement reconciliation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("engagement reconciliation completed",
		zap.Int("merged", merged),
		zap.Duration("duration", time.Since(start)))
}

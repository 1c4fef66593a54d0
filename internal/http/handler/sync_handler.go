package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/service"
)

type SyncHandler struct {
	reconcileService *service.ReconcileService
	logger           *zap.Logger
}

func NewSyncHandler(reconcileService *service.ReconcileService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// @Summary Reconciliation status per resource
// @Tags Sync
// @Produce json
// @Success 200 {array} domain.SyncStatusDTO
// @Security BearerAuth
// @Router /sync/status [get]
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.reconcileService.Status())
}

// @Summary Trigger an engagement reconciliation
// @Description Fetches the remote snapshot and merges it into the local
// @Description store. An overlapping run answers 409 without queuing.
// @Tags Sync
// @Produce json
// @Success 202 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sync/engagements [post]
func (h *SyncHandler) SyncEngagements(w http.ResponseWriter, r *http.Request) {
	count, err := h.reconcileService.SyncEngagements(r.Context())
	if err != nil {
		h.logger.Warn("engagement sync failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"merged": count,
	})
}

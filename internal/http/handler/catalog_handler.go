package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// @Summary List catalog services
// @Tags Catalog
// @Produce json
// @Param includeInactive query bool false "Include deactivated services"
// @Success 200 {array} domain.Service
// @Security BearerAuth
// @Router /services [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("includeInactive") != "true"

	services, err := h.catalogService.ListServices(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list services", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

// @Summary Create catalog service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreateServiceRequest true "Service data"
// @Success 201 {object} domain.Service
// @Security BearerAuth
// @Router /services [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	svc, err := h.catalogService.CreateService(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create service", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, svc)
}

// @Summary Get catalog service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} domain.Service
// @Security BearerAuth
// @Router /services/{id} [get]
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.catalogService.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

// @Summary Update catalog service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body domain.UpdateServiceRequest true "Fields to patch"
// @Success 200 {object} domain.Service
// @Security BearerAuth
// @Router /services/{id} [put]
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	svc, err := h.catalogService.UpdateService(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

// @Summary Delete catalog service
// @Tags Catalog
// @Param id path string true "Service ID"
// @Success 204
// @Security BearerAuth
// @Router /services/{id} [delete]
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Add service option
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body domain.CreateServiceOptionRequest true "Option data"
// @Success 201 {object} domain.ServiceOption
// @Security BearerAuth
// @Router /services/{id}/options [post]
func (h *CatalogHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	option, err := h.catalogService.AddOption(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, option)
}

// @Summary Remove service option
// @Tags Catalog
// @Param id path string true "Service ID"
// @Param optionId path string true "Option ID"
// @Success 204
// @Security BearerAuth
// @Router /services/{id}/options/{optionId} [delete]
func (h *CatalogHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteOption(r.Context(), chi.URLParam(r, "optionId")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

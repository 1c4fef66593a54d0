package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/repository"
	"github.com/washandgo/engagement-api/internal/service"
)

type EngagementHandler struct {
	engagementService *service.EngagementService
	logger            *zap.Logger
}

func NewEngagementHandler(engagementService *service.EngagementService, logger *zap.Logger) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		logger:            logger,
	}
}

// @Summary List engagements
// @Tags Engagements
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param kind query string false "Filter by kind" Enums(service, devis, facture)
// @Param status query string false "Filter by status"
// @Param clientId query string false "Filter by client ID"
// @Param year query int false "Filter by scheduled year"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.EngagementDTO}
// @Security BearerAuth
// @Router /engagements [get]
func (h *EngagementHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	filter := repository.EngagementFilter{
		ClientID: r.URL.Query().Get("clientId"),
	}
	if k := r.URL.Query().Get("kind"); k != "" {
		kind := domain.EngagementKind(k)
		if !kind.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid kind filter")
			return
		}
		filter.Kind = kind
	}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = domain.EngagementStatus(s)
	}
	if y := r.URL.Query().Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year filter")
			return
		}
		filter.Year = year
	}

	items, total, err := h.engagementService.List(r.Context(), page, pageSize, filter)
	if err != nil {
		h.logger.Error("failed to list engagements", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, paginated(items, total, page, pageSize))
}

// @Summary Create engagement
// @Tags Engagements
// @Accept json
// @Produce json
// @Param request body domain.CreateEngagementRequest true "Engagement data"
// @Success 201 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements [post]
func (h *EngagementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.engagementService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create engagement", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// @Summary Get engagement
// @Tags Engagements
// @Produce json
// @Param id path string true "Engagement ID"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id} [get]
func (h *EngagementHandler) Get(w http.ResponseWriter, r *http.Request) {
	dto, err := h.engagementService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Update engagement
// @Tags Engagements
// @Accept json
// @Produce json
// @Param id path string true "Engagement ID"
// @Param request body domain.UpdateEngagementRequest true "Fields to patch"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id} [put]
func (h *EngagementHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.engagementService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Delete engagement
// @Tags Engagements
// @Param id path string true "Engagement ID"
// @Success 204
// @Security BearerAuth
// @Router /engagements/{id} [delete]
func (h *EngagementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.engagementService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Get engagement totals
// @Description Recomputes price, duration and VAT from the current catalog.
// @Tags Engagements
// @Produce json
// @Param id path string true "Engagement ID"
// @Success 200 {object} domain.TotalsDTO
// @Security BearerAuth
// @Router /engagements/{id}/totals [get]
func (h *EngagementHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.engagementService.GetTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// @Summary Set or reset the VAT override
// @Description enabled=true/false forces VAT on or off for this engagement,
// @Description enabled=null resets it to inherit the company default.
// @Tags Engagements
// @Accept json
// @Produce json
// @Param id path string true "Engagement ID"
// @Param request body domain.SetVatOverrideRequest true "VAT override"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id}/vat [put]
func (h *EngagementHandler) SetVat(w http.ResponseWriter, r *http.Request) {
	var req domain.SetVatOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	dto, err := h.engagementService.SetVatOverride(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Get document payload
// @Description Returns the display-ready quote or invoice data without
// @Description changing any state.
// @Tags Engagements
// @Produce json
// @Param id path string true "Engagement ID"
// @Success 200 {object} domain.DocumentDTO
// @Security BearerAuth
// @Router /engagements/{id}/document [get]
func (h *EngagementHandler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engagementService.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

package handler

// This file contains the lifecycle transition handlers for the
// EngagementHandler: status moves, quote settlement and document issuance.

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/domain"
)

// Confirm godoc
// @Summary Confirm a planned service
// @Description Moves a service from planifié to envoyé.
// @Tags Engagements
// @Produce json
// @Param id path string true "Engagement ID"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id}/confirm [post]
func (h *EngagementHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dto, err := h.engagementService.Confirm(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to confirm engagement", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Complete godoc
// @Summary Mark a service as realized
// @Tags Engagements
// @Accept json
// @Produce json
// @Param id path string true "Engagement ID"
// @Param request body domain.CompleteEngagementRequest false "Realized duration and comment"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id}/complete [post]
func (h *EngagementHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.CompleteEngagementRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	dto, err := h.engagementService.Complete(r.Context(), id, &req)
	if err != nil {
		h.logger.Warn("failed to complete engagement", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Cancel godoc
// @Summary Cancel an engagement
// @Description Moves any non-terminal engagement to annulé.
// @Tags Engagements
// @Accept json
// @Produce json
// @Param id path string true "Engagement ID"
// @Param request body domain.CancelEngagementRequest false "Cancellation reason"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id}/cancel [post]
func (h *EngagementHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.CancelEngagementRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	dto, err := h.engagementService.Cancel(r.Context(), id, &req)
	if err != nil {
		h.logger.Warn("failed to cancel engagement", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// MarkPaid godoc
// @Summary Mark an invoice as paid
// @Tags Engagements
// @Produce json
// @Param id path string true "Engagement ID"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id}/pay [post]
func (h *EngagementHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dto, err := h.engagementService.MarkPaid(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to mark engagement paid", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Send godoc
// @Summary Send a quote or invoice to client contacts
// @Description Allocates the document number on first send, moves the
// @Description engagement to envoyé and appends one send history entry.
// @Tags Engagements
// @Accept json
// @Produce json
// @Param id path string true "Engagement ID"
// @Param request body domain.SendQuoteRequest true "Recipient contacts"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id}/send [post]
func (h *EngagementHandler) Send(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.SendQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.engagementService.SendDocument(r.Context(), id, &req)
	if err != nil {
		h.logger.Warn("failed to send document", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Settle godoc
// @Summary Record the outcome of a sent quote
// @Tags Engagements
// @Accept json
// @Produce json
// @Param id path string true "Engagement ID"
// @Param request body domain.SettleQuoteRequest true "Accepted or refused"
// @Success 200 {object} domain.EngagementDTO
// @Security BearerAuth
// @Router /engagements/{id}/settle [post]
func (h *EngagementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.SettleQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	dto, err := h.engagementService.SettleQuote(r.Context(), id, &req)
	if err != nil {
		h.logger.Warn("failed to settle quote", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// GenerateQuote godoc
// @Summary Generate the quote document
// @Description Allocates the quote number if missing and returns the
// @Description display-ready payload. Status is never changed here.
// @Tags Engagements
// @Produce json
// @Param id path string true "Engagement ID"
// @Success 200 {object} domain.DocumentDTO
// @Security BearerAuth
// @Router /engagements/{id}/quote [post]
func (h *EngagementHandler) GenerateQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.engagementService.GenerateQuote(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to generate quote", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// GenerateInvoice godoc
// @Summary Issue an invoice from a service
// @Description Realizes the service, stamps the shared invoice number and
// @Description creates an independent facture engagement in one transaction.
// @Tags Engagements
// @Accept json
// @Produce json
// @Param id path string true "Engagement ID"
// @Param request body domain.GenerateInvoiceRequest false "Issuing company override"
// @Success 201 {object} domain.GenerateInvoiceResponse
// @Security BearerAuth
// @Router /engagements/{id}/invoice [post]
func (h *EngagementHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.GenerateInvoiceRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	resp, err := h.engagementService.GenerateInvoice(r.Context(), id, &req)
	if err != nil {
		h.logger.Warn("failed to generate invoice", zap.Error(err), zap.String("engagement_id", id))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/middleware"
	"github.com/smartbuilders/bautrack-backend/internal/services"
)

type DemandHandler struct {
	log           *logger.Logger
	demandService services.DemandService
}

func NewDemandHandler(baseLog *logger.Logger, dsvc services.DemandService) *DemandHandler {
	return &DemandHandler{
		log:           baseLog.With("handler", "DemandHandler"),
		demandService: dsvc,
	}
}

type addDemandRequest struct {
	MaterialID   *uuid.UUID      `json:"material_id"`
	MaterialName string          `json:"material_name"`
	MaterialUnit string          `json:"material_unit"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Note         string          `json:"note"`
}

// POST /api/steps/:id/demands
func (h *DemandHandler) AddDemand(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	stepID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid step id"))
		return
	}
	var req addDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	demand, err := h.demandService.AddDemand(c.Request.Context(), actor, stepID, services.AddDemandInput{
		MaterialID:   req.MaterialID,
		MaterialName: req.MaterialName,
		MaterialUnit: req.MaterialUnit,
		Quantity:     req.Quantity,
		Note:         req.Note,
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, demand)
}

type updateDemandRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// PATCH /api/demands/:id
func (h *DemandHandler) UpdateDemandQuantity(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid demand id"))
		return
	}
	var req updateDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	demand, err := h.demandService.UpdateDemandQuantity(c.Request.Context(), actor, linkID, req.Quantity)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, demand)
}

// DELETE /api/demands/:id
func (h *DemandHandler) RemoveDemand(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid demand id"))
		return
	}
	if err := h.demandService.RemoveDemand(c.Request.Context(), actor, linkID); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": linkID})
}

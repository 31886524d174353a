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

type MaterialHandler struct {
	log                *logger.Logger
	inventoryService   services.InventoryService
	reservationService services.ReservationService
}

func NewMaterialHandler(baseLog *logger.Logger, isvc services.InventoryService, rsvc services.ReservationService) *MaterialHandler {
	return &MaterialHandler{
		log:                baseLog.With("handler", "MaterialHandler"),
		inventoryService:   isvc,
		reservationService: rsvc,
	}
}

type createMaterialRequest struct {
	Name  string          `json:"name" binding:"required"`
	Unit  string          `json:"unit" binding:"required"`
	Stock decimal.Decimal `json:"stock"`
}

// POST /api/materials
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	var req createMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	material, err := h.inventoryService.CreateMaterial(c.Request.Context(), actor, req.Name, req.Unit, req.Stock)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, material)
}

// GET /api/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	materials, err := h.inventoryService.ListMaterials(c.Request.Context(), actor)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, materials)
}

type updateMaterialRequest struct {
	Name  string           `json:"name" binding:"required"`
	Unit  string           `json:"unit"`
	Stock *decimal.Decimal `json:"stock"`
}

// PUT /api/materials/:id
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid material id"))
		return
	}
	var req updateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	material, err := h.inventoryService.UpdateMaterial(c.Request.Context(), actor, id, req.Name, req.Unit, req.Stock)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, material)
}

// DELETE /api/materials/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid material id"))
		return
	}
	if err := h.inventoryService.DeleteMaterial(c.Request.Context(), actor, id); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

type adjustStockRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

// POST /api/materials/:id/adjust
func (h *MaterialHandler) AdjustStock(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid material id"))
		return
	}
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	material, err := h.inventoryService.AdjustStock(c.Request.Context(), actor, id, req.Delta)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, material)
}

// GET /api/materials/:id/movements
func (h *MaterialHandler) ListMovements(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid material id"))
		return
	}
	movements, err := h.inventoryService.ListMovements(c.Request.Context(), actor, id)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, movements)
}

// GET /api/reservations?project_id=
func (h *MaterialHandler) ComputeReservations(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	var projectID *uuid.UUID
	if raw := c.Query("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondAPIError(c, apierr.Validation("invalid project id"))
			return
		}
		projectID = &id
	}
	report, err := h.reservationService.ComputeReservations(c.Request.Context(), actor, projectID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, report)
}

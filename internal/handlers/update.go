package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/middleware"
	"github.com/smartbuilders/bautrack-backend/internal/services"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type UpdateHandler struct {
	log             *logger.Logger
	queueService    services.UpdateQueueService
	approvalService services.ApprovalService
	notifier        services.Notifier
}

func NewUpdateHandler(
	baseLog *logger.Logger,
	qsvc services.UpdateQueueService,
	asvc services.ApprovalService,
	notifier services.Notifier,
) *UpdateHandler {
	return &UpdateHandler{
		log:             baseLog.With("handler", "UpdateHandler"),
		queueService:    qsvc,
		approvalService: asvc,
		notifier:        notifier,
	}
}

type submitUpdateRequest struct {
	Type string `json:"type" binding:"required"`

	NewStatus   *string `json:"new_status"`
	NewProgress *int    `json:"new_progress"`

	NoteText string `json:"note_text"`

	// Raw photo bytes, base64 in the JSON body.
	PhotoData []byte `json:"photo_data"`
	PhotoMime string `json:"photo_mime"`
	Caption   string `json:"caption"`

	MaterialID   *uuid.UUID      `json:"material_id"`
	MaterialName string          `json:"material_name"`
	MaterialUnit string          `json:"material_unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	RequestNote  string          `json:"request_note"`
}

// POST /api/steps/:id/updates
func (h *UpdateHandler) SubmitUpdate(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	stepID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid step id"))
		return
	}
	var req submitUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	updateType, ok := types.ParseUpdateType(req.Type)
	if !ok {
		RespondAPIError(c, apierr.Validation("unknown update type %q", req.Type))
		return
	}

	input := services.SubmitInput{
		Type:         updateType,
		NewProgress:  req.NewProgress,
		NoteText:     req.NoteText,
		PhotoData:    req.PhotoData,
		PhotoMime:    req.PhotoMime,
		Caption:      req.Caption,
		MaterialID:   req.MaterialID,
		MaterialName: req.MaterialName,
		MaterialUnit: req.MaterialUnit,
		Quantity:     req.Quantity,
		RequestNote:  req.RequestNote,
	}
	if req.NewStatus != nil {
		status, ok := types.ParseStepStatus(*req.NewStatus)
		if !ok {
			RespondAPIError(c, apierr.Validation("unknown step status %q", *req.NewStatus))
			return
		}
		input.NewStatus = &status
	}

	update, err := h.queueService.Submit(c.Request.Context(), actor, stepID, input)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, update)
}

// GET /api/updates?status=awaiting
func (h *UpdateHandler) ListUpdates(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	var status *types.UpdateStatus
	if raw := c.Query("status"); raw != "" {
		s := types.UpdateStatus(raw)
		switch s {
		case types.UpdateStatusAwaiting, types.UpdateStatusApproved, types.UpdateStatusRejected:
			status = &s
		default:
			RespondAPIError(c, apierr.Validation("unknown update status %q", raw))
			return
		}
	}
	updates, err := h.queueService.List(c.Request.Context(), actor, status)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, updates)
}

// POST /api/updates/:id/approve
func (h *UpdateHandler) ApproveUpdate(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	updateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid update id"))
		return
	}
	payload, err := h.approvalService.Approve(c.Request.Context(), actor, updateID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	// Notification failures never affect the approval outcome.
	if payload != nil {
		h.notifier.Notify(c.Request.Context(), *payload)
	}
	RespondOK(c, gin.H{"approved": updateID})
}

type rejectUpdateRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /api/updates/:id/reject
func (h *UpdateHandler) RejectUpdate(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	updateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid update id"))
		return
	}
	var req rejectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	if err := h.approvalService.Reject(c.Request.Context(), actor, updateID, req.Reason); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"rejected": updateID})
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/middleware"
	"github.com/smartbuilders/bautrack-backend/internal/services"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type StepHandler struct {
	log         *logger.Logger
	stepService services.StepService
}

func NewStepHandler(baseLog *logger.Logger, ssvc services.StepService) *StepHandler {
	return &StepHandler{
		log:         baseLog.With("handler", "StepHandler"),
		stepService: ssvc,
	}
}

type transitionStepRequest struct {
	Status   string `json:"status" binding:"required"`
	Progress *int   `json:"progress"`
}

// POST /api/steps/:id/status
func (h *StepHandler) TransitionStatus(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	stepID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid step id"))
		return
	}
	var req transitionStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	status, ok := types.ParseStepStatus(req.Status)
	if !ok {
		RespondAPIError(c, apierr.Validation("unknown step status %q", req.Status))
		return
	}
	step, err := h.stepService.TransitionStepStatus(c.Request.Context(), actor, stepID, status, req.Progress)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, step)
}

// GET /api/steps/:id
func (h *StepHandler) GetStep(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	stepID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid step id"))
		return
	}
	step, err := h.stepService.GetStep(c.Request.Context(), actor, stepID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, step)
}

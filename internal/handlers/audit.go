package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/middleware"
	"github.com/smartbuilders/bautrack-backend/internal/services"
)

const defaultAuditLimit = 100

type AuditHandler struct {
	log          *logger.Logger
	auditService services.AuditService
}

func NewAuditHandler(baseLog *logger.Logger, asvc services.AuditService) *AuditHandler {
	return &AuditHandler{
		log:          baseLog.With("handler", "AuditHandler"),
		auditService: asvc,
	}
}

// GET /api/audit?project_id=&limit=
func (h *AuditHandler) ListAudit(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondAPIError(c, apierr.Validation("invalid limit %q", raw))
			return
		}
		limit = n
	}

	if raw := c.Query("project_id"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			RespondAPIError(c, apierr.Validation("invalid project id"))
			return
		}
		entries, err := h.auditService.ListByProject(c.Request.Context(), actor, projectID, limit)
		if err != nil {
			RespondAPIError(c, err)
			return
		}
		RespondOK(c, entries)
		return
	}

	entries, err := h.auditService.List(c.Request.Context(), actor, limit)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, entries)
}

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/middleware"
	"github.com/smartbuilders/bautrack-backend/internal/services"
)

type ProjectHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
}

func NewProjectHandler(baseLog *logger.Logger, psvc services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		log:            baseLog.With("handler", "ProjectHandler"),
		projectService: psvc,
	}
}

type createStepRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

type createProjectRequest struct {
	OrderNumber  string    `json:"order_number" binding:"required"`
	CustomerName string    `json:"customer_name" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	PlannedStart time.Time `json:"planned_start" binding:"required"`
	PlannedEnd   time.Time `json:"planned_end" binding:"required"`

	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`

	Steps []createStepRequest `json:"steps"`
}

// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	input := services.CreateProjectInput{
		OrderNumber:  req.OrderNumber,
		CustomerName: req.CustomerName,
		Title:        req.Title,
		Description:  req.Description,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
		Street:       req.Street,
		HouseNumber:  req.HouseNumber,
		PostalCode:   req.PostalCode,
		City:         req.City,
	}
	for _, s := range req.Steps {
		input.Steps = append(input.Steps, services.CreateStepInput{
			Title:       s.Title,
			Description: s.Description,
			StartDate:   s.StartDate,
			EndDate:     s.EndDate,
		})
	}
	project, err := h.projectService.CreateProject(c.Request.Context(), actor, input)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, project)
}

// GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	summaries, err := h.projectService.ListProjects(c.Request.Context(), actor)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, summaries)
}

// GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid project id"))
		return
	}
	project, err := h.projectService.GetProject(c.Request.Context(), actor, projectID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, project)
}

type createNoteRequest struct {
	Text            string `json:"text" binding:"required"`
	CustomerVisible bool   `json:"customer_visible"`
}

// POST /api/steps/:id/notes
func (h *ProjectHandler) CreateNote(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	stepID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Validation("invalid step id"))
		return
	}
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	note, err := h.projectService.CreateNote(c.Request.Context(), actor, stepID, req.Text, req.CustomerVisible)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, note)
}

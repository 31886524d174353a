package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type ProjectService interface {
	CreateProject(ctx context.Context, actor types.Actor, input CreateProjectInput) (*types.Project, error)
	GetProject(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.Project, error)
	ListProjects(ctx context.Context, actor types.Actor) ([]ProjectSummary, error)
	CreateNote(ctx context.Context, actor types.Actor, stepID uuid.UUID, text string, customerVisible bool) (*types.Note, error)
}

type CreateProjectInput struct {
	// Order numbers come from the outside; the core only requires one.
	OrderNumber  string
	CustomerName string
	Title        string
	Description  string
	PlannedStart time.Time
	PlannedEnd   time.Time

	Street      string
	HouseNumber string
	PostalCode  string
	City        string

	Steps []CreateStepInput
}

type CreateStepInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// ProjectSummary is the overview row: progress is the plain average over the
// project's steps.
type ProjectSummary struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	Title         string    `json:"title"`
	City          string    `json:"city"`
	PlannedStart  time.Time `json:"planned_start"`
	PlannedEnd    time.Time `json:"planned_end"`
	TotalSteps    int       `json:"total_steps"`
	FinishedSteps int       `json:"finished_steps"`
	Progress      int       `json:"progress"`
}

type projectService struct {
	db           *gorm.DB
	log          *logger.Logger
	projectRepo  repos.ProjectRepo
	stepRepo     repos.StepRepo
	noteRepo     repos.NoteRepo
	auditService AuditService
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	stepRepo repos.StepRepo,
	noteRepo repos.NoteRepo,
	auditService AuditService,
) ProjectService {
	return &projectService{
		db:           db,
		log:          baseLog.With("service", "ProjectService"),
		projectRepo:  projectRepo,
		stepRepo:     stepRepo,
		noteRepo:     noteRepo,
		auditService: auditService,
	}
}

func (s *projectService) CreateProject(ctx context.Context, actor types.Actor, input CreateProjectInput) (*types.Project, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	projectID := uuid.New()
	project := &types.Project{
		ID:           projectID,
		OrderNumber:  strings.TrimSpace(input.OrderNumber),
		CustomerName: strings.TrimSpace(input.CustomerName),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		PlannedStart: input.PlannedStart,
		PlannedEnd:   input.PlannedEnd,
		Address: &types.Address{
			ID:          uuid.New(),
			ProjectID:   projectID,
			Street:      strings.TrimSpace(input.Street),
			HouseNumber: strings.TrimSpace(input.HouseNumber),
			PostalCode:  strings.TrimSpace(input.PostalCode),
			City:        strings.TrimSpace(input.City),
		},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.projectRepo.Create(ctx, tx, project); err != nil {
			return apierr.Internal(err)
		}
		steps := make([]*types.Step, 0, len(input.Steps))
		for i, in := range input.Steps {
			steps = append(steps, &types.Step{
				ID:          uuid.New(),
				ProjectID:   projectID,
				Title:       strings.TrimSpace(in.Title),
				Description: strings.TrimSpace(in.Description),
				StartDate:   in.StartDate,
				EndDate:     in.EndDate,
				Status:      types.StepStatusOpen,
				Progress:    0,
				OrderIndex:  i + 1,
			})
		}
		if _, err := s.stepRepo.Create(ctx, tx, steps); err != nil {
			return apierr.Internal(err)
		}
		project.Steps = make([]types.Step, len(steps))
		for i, step := range steps {
			project.Steps[i] = *step
		}
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditProjectCreated, map[string]interface{}{
			"project_id":   projectID,
			"order_number": project.OrderNumber,
			"steps":        len(steps),
		}, &projectID, nil)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("project created", "project_id", projectID, "order_number", project.OrderNumber)
	return project, nil
}

func validateProjectInput(input CreateProjectInput) error {
	if strings.TrimSpace(input.OrderNumber) == "" {
		return apierr.Validation("order number is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return apierr.Validation("customer name is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return apierr.Validation("project title is required")
	}
	if input.PlannedStart.IsZero() || input.PlannedEnd.IsZero() {
		return apierr.Validation("planned start and end are required")
	}
	if input.PlannedEnd.Before(input.PlannedStart) {
		return apierr.Validation("planned end must not be before planned start")
	}
	for i, step := range input.Steps {
		if strings.TrimSpace(step.Title) == "" {
			return apierr.Validation("step %d needs a title", i+1)
		}
		if step.EndDate.Before(step.StartDate) {
			return apierr.Validation("step %q ends before it starts", step.Title)
		}
	}
	return nil
}

func (s *projectService) GetProject(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.Project, error) {
	if err := RequireCapability(actor, types.CapabilityView); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("project %s not found", id)
		}
		return nil, apierr.Internal(err)
	}
	return project, nil
}

func (s *projectService) ListProjects(ctx context.Context, actor types.Actor) ([]ProjectSummary, error) {
	if err := RequireCapability(actor, types.CapabilityView); err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	summaries := make([]ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summary := ProjectSummary{
			ID:           project.ID,
			OrderNumber:  project.OrderNumber,
			CustomerName: project.CustomerName,
			Title:        project.Title,
			PlannedStart: project.PlannedStart,
			PlannedEnd:   project.PlannedEnd,
			TotalSteps:   len(project.Steps),
		}
		if project.Address != nil {
			summary.City = project.Address.City
		}
		progressSum := 0
		for _, step := range project.Steps {
			progressSum += step.Progress
			if step.Status == types.StepStatusDone {
				summary.FinishedSteps++
			}
		}
		if len(project.Steps) > 0 {
			summary.Progress = progressSum / len(project.Steps)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *projectService) CreateNote(ctx context.Context, actor types.Actor, stepID uuid.UUID, text string, customerVisible bool) (*types.Note, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.Validation("note text must not be empty")
	}

	var created *types.Note
	err := s.db.Transaction(func(tx *gorm.DB) error {
		step, err := s.stepRepo.GetByID(ctx, tx, stepID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("step %s not found", stepID)
			}
			return apierr.Internal(err)
		}
		note := &types.Note{
			ID:              uuid.New(),
			StepID:          stepID,
			Text:            text,
			AuthorID:        actor.ID,
			CustomerVisible: customerVisible,
			CreatedAt:       time.Now(),
		}
		if _, err := s.noteRepo.Create(ctx, tx, note); err != nil {
			return apierr.Internal(err)
		}
		created = note
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditNoteCreated, map[string]interface{}{
			"note_id": note.ID,
		}, &step.ProjectID, &stepID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

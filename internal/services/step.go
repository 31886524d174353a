package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// StepService is the staff-direct path for step status changes. It applies
// the same done-edge booking rule as the approval processor.
type StepService interface {
	TransitionStepStatus(ctx context.Context, actor types.Actor, stepID uuid.UUID, newStatus types.StepStatus, progress *int) (*types.Step, error)
	GetStep(ctx context.Context, actor types.Actor, stepID uuid.UUID) (*types.Step, error)
}

type stepService struct {
	db               *gorm.DB
	log              *logger.Logger
	stepRepo         repos.StepRepo
	inventoryService InventoryService
	auditService     AuditService
}

func NewStepService(
	db *gorm.DB,
	baseLog *logger.Logger,
	stepRepo repos.StepRepo,
	inventoryService InventoryService,
	auditService AuditService,
) StepService {
	return &stepService{
		db:               db,
		log:              baseLog.With("service", "StepService"),
		stepRepo:         stepRepo,
		inventoryService: inventoryService,
		auditService:     auditService,
	}
}

func (s *stepService) TransitionStepStatus(ctx context.Context, actor types.Actor, stepID uuid.UUID, newStatus types.StepStatus, progress *int) (*types.Step, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	if _, ok := types.ParseStepStatus(string(newStatus)); !ok {
		return nil, apierr.Validation("unknown step status %q", newStatus)
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return nil, apierr.Validation("progress must be between 0 and 100")
	}

	var result *types.Step
	err := s.db.Transaction(func(tx *gorm.DB) error {
		step, err := s.stepRepo.GetByID(ctx, tx, stepID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("step %s not found", stepID)
			}
			return apierr.Internal(err)
		}
		oldStatus := step.Status

		if oldStatus == newStatus {
			// No edge crossed: saving a done step again must not re-book.
			if progress != nil && *progress != step.Progress {
				if err := s.stepRepo.UpdateProgress(ctx, tx, stepID, *progress); err != nil {
					return apierr.Internal(err)
				}
				step.Progress = *progress
			}
			result = step
			return nil
		}

		// The conditional write is the race guard: if another request moved
		// the step off oldStatus meanwhile, no booking may fire here.
		flipped, err := s.stepRepo.TransitionStatus(ctx, tx, stepID, oldStatus, newStatus, progress)
		if err != nil {
			return apierr.Internal(err)
		}
		if !flipped {
			return apierr.AlreadyProcessed("step %s was modified concurrently", stepID)
		}

		switch {
		case newStatus == types.StepStatusDone:
			if err := s.inventoryService.BookStepCompletion(ctx, tx, actor.ID, stepID); err != nil {
				return err
			}
		case oldStatus == types.StepStatusDone:
			if err := s.inventoryService.ReleaseStepCompletion(ctx, tx, actor.ID, stepID); err != nil {
				return err
			}
		}

		step.Status = newStatus
		if progress != nil {
			step.Progress = *progress
		}
		result = step
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditStepTransitioned, map[string]interface{}{
			"step_id":     stepID,
			"from_status": oldStatus,
			"to_status":   newStatus,
		}, &step.ProjectID, &stepID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("step transitioned", "step_id", stepID, "status", newStatus)
	return result, nil
}

func (s *stepService) GetStep(ctx context.Context, actor types.Actor, stepID uuid.UUID) (*types.Step, error) {
	if err := RequireCapability(actor, types.CapabilityView); err != nil {
		return nil, err
	}
	step, err := s.stepRepo.GetByID(ctx, nil, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("step %s not found", stepID)
		}
		return nil, apierr.Internal(err)
	}
	return step, nil
}

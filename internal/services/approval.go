package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// ApprovalService is the only writer that moves a pending update out of
// awaiting. Effects are applied in the same transaction as the status flip,
// so a proposal is applied exactly once or not at all.
type ApprovalService interface {
	Approve(ctx context.Context, actor types.Actor, updateID uuid.UUID) (*NotificationPayload, error)
	Reject(ctx context.Context, actor types.Actor, updateID uuid.UUID, reason string) error
}

type approvalService struct {
	db                *gorm.DB
	log               *logger.Logger
	pendingUpdateRepo repos.PendingUpdateRepo
	stepRepo          repos.StepRepo
	projectRepo       repos.ProjectRepo
	demandRepo        repos.DemandRepo
	noteRepo          repos.NoteRepo
	photoRepo         repos.PhotoRepo
	photoStore        PhotoStore
	inventoryService  InventoryService
	auditService      AuditService
}

func NewApprovalService(
	db *gorm.DB,
	baseLog *logger.Logger,
	pendingUpdateRepo repos.PendingUpdateRepo,
	stepRepo repos.StepRepo,
	projectRepo repos.ProjectRepo,
	demandRepo repos.DemandRepo,
	noteRepo repos.NoteRepo,
	photoRepo repos.PhotoRepo,
	photoStore PhotoStore,
	inventoryService InventoryService,
	auditService AuditService,
) ApprovalService {
	return &approvalService{
		db:                db,
		log:               baseLog.With("service", "ApprovalService"),
		pendingUpdateRepo: pendingUpdateRepo,
		stepRepo:          stepRepo,
		projectRepo:       projectRepo,
		demandRepo:        demandRepo,
		noteRepo:          noteRepo,
		photoRepo:         photoRepo,
		photoStore:        photoStore,
		inventoryService:  inventoryService,
		auditService:      auditService,
	}
}

func (s *approvalService) Approve(ctx context.Context, actor types.Actor, updateID uuid.UUID) (*NotificationPayload, error) {
	if err := RequireCapability(actor, types.CapabilityApprove); err != nil {
		return nil, err
	}

	var payload *NotificationPayload
	err := s.db.Transaction(func(tx *gorm.DB) error {
		update, step, err := s.loadAwaiting(ctx, tx, updateID)
		if err != nil {
			return err
		}

		// Flip first, conditionally on the row still being awaiting. A
		// concurrent reviewer loses the race here and applies nothing; a
		// failed re-validation below rolls the flip back and the proposal
		// stays awaiting for a later retry.
		flipped, err := s.pendingUpdateRepo.MarkProcessed(ctx, tx, updateID, types.UpdateStatusApproved, actor.ID, "")
		if err != nil {
			return apierr.Internal(err)
		}
		if !flipped {
			return apierr.AlreadyProcessed("update %s has already been processed", updateID)
		}

		newStatus := step.Status
		newProgress := step.Progress
		var details map[string]interface{}

		switch update.Type {
		case types.UpdateTypeStatusChange:
			newStatus, newProgress, details, err = s.applyStatusChange(ctx, tx, actor, update, step)
		case types.UpdateTypeMaterialRequest:
			details, err = s.applyMaterialRequest(ctx, tx, actor, update, step)
		case types.UpdateTypePhotoUpload:
			details, err = s.applyPhotoApproval(ctx, tx, update)
		case types.UpdateTypeNote:
			details, err = s.applyNote(ctx, tx, update)
		default:
			err = apierr.Validation("unknown update type %q", update.Type)
		}
		if err != nil {
			return err
		}

		details["update_id"] = update.ID
		details["submitted_by"] = update.SubmittedBy
		if err := s.auditService.Record(ctx, tx, actor.ID, types.AuditUpdateApproved, details, &step.ProjectID, &step.ID); err != nil {
			return err
		}

		project, err := s.projectRepo.GetByID(ctx, tx, step.ProjectID)
		if err != nil {
			return apierr.Internal(err)
		}
		payload = &NotificationPayload{
			Recipient:   project.CustomerName,
			OrderNumber: project.OrderNumber,
			StepTitle:   step.Title,
			NewStatus:   newStatus,
			Progress:    newProgress,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pending update approved", "update_id", updateID, "reviewer", actor.ID)
	return payload, nil
}

func (s *approvalService) Reject(ctx context.Context, actor types.Actor, updateID uuid.UUID, reason string) error {
	if err := RequireCapability(actor, types.CapabilityApprove); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		update, step, err := s.loadAwaiting(ctx, tx, updateID)
		if err != nil {
			return err
		}
		flipped, err := s.pendingUpdateRepo.MarkProcessed(ctx, tx, updateID, types.UpdateStatusRejected, actor.ID, reason)
		if err != nil {
			return apierr.Internal(err)
		}
		if !flipped {
			return apierr.AlreadyProcessed("update %s has already been processed", updateID)
		}

		// A rejected photo was stored eagerly at submission and must not
		// linger as orphaned media.
		if update.Type == types.UpdateTypePhotoUpload {
			photoPayload, err := update.PhotoUpload()
			if err != nil {
				return apierr.Internal(err)
			}
			photo, err := s.photoRepo.GetByID(ctx, tx, photoPayload.PhotoID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.Internal(err)
			}
			if photo != nil {
				if err := s.photoStore.Delete(ctx, photo.StorageRef); err != nil {
					return apierr.Internal(err)
				}
				if err := s.photoRepo.Delete(ctx, tx, photo.ID); err != nil {
					return apierr.Internal(err)
				}
			}
		}

		return s.auditService.Record(ctx, tx, actor.ID, types.AuditUpdateRejected, map[string]interface{}{
			"update_id":    update.ID,
			"type":         update.Type,
			"submitted_by": update.SubmittedBy,
			"reason":       reason,
		}, &step.ProjectID, &step.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("pending update rejected", "update_id", updateID, "reviewer", actor.ID)
	return nil
}

func (s *approvalService) loadAwaiting(ctx context.Context, tx *gorm.DB, updateID uuid.UUID) (*types.PendingUpdate, *types.Step, error) {
	update, err := s.pendingUpdateRepo.GetByID(ctx, tx, updateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound("update %s not found", updateID)
		}
		return nil, nil, apierr.Internal(err)
	}
	if update.Status != types.UpdateStatusAwaiting {
		return nil, nil, apierr.AlreadyProcessed("update %s has already been processed", updateID)
	}
	step, err := s.stepRepo.GetByID(ctx, tx, update.StepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound("step %s not found", update.StepID)
		}
		return nil, nil, apierr.Internal(err)
	}
	return update, step, nil
}

// applyStatusChange re-validates against current stock, not stock at
// submission time, and books the done edge exactly as the staff path does.
func (s *approvalService) applyStatusChange(ctx context.Context, tx *gorm.DB, actor types.Actor, update *types.PendingUpdate, step *types.Step) (types.StepStatus, int, map[string]interface{}, error) {
	change, err := update.StatusChange()
	if err != nil {
		return "", 0, nil, apierr.Internal(err)
	}

	newStatus := step.Status
	if change.NewStatus != nil {
		newStatus = *change.NewStatus
	}
	newProgress := step.Progress
	if change.NewProgress != nil {
		newProgress = *change.NewProgress
	}

	if newStatus != step.Status {
		flipped, err := s.stepRepo.TransitionStatus(ctx, tx, step.ID, step.Status, newStatus, change.NewProgress)
		if err != nil {
			return "", 0, nil, apierr.Internal(err)
		}
		if !flipped {
			return "", 0, nil, apierr.AlreadyProcessed("step %s was modified concurrently", step.ID)
		}
		switch {
		case newStatus == types.StepStatusDone:
			if err := s.inventoryService.BookStepCompletion(ctx, tx, actor.ID, step.ID); err != nil {
				return "", 0, nil, err
			}
		case step.Status == types.StepStatusDone:
			if err := s.inventoryService.ReleaseStepCompletion(ctx, tx, actor.ID, step.ID); err != nil {
				return "", 0, nil, err
			}
		}
	} else if change.NewProgress != nil && *change.NewProgress != step.Progress {
		if err := s.stepRepo.UpdateProgress(ctx, tx, step.ID, *change.NewProgress); err != nil {
			return "", 0, nil, apierr.Internal(err)
		}
	}

	details := map[string]interface{}{
		"type":          update.Type,
		"from_status":   step.Status,
		"to_status":     newStatus,
		"from_progress": step.Progress,
		"to_progress":   newProgress,
	}
	return newStatus, newProgress, details, nil
}

// applyMaterialRequest creates the demand link. On a step that is already
// done the normal booking point has passed, so the quantity is booked against
// the ledger right here, with the same sufficiency check.
func (s *approvalService) applyMaterialRequest(ctx context.Context, tx *gorm.DB, actor types.Actor, update *types.PendingUpdate, step *types.Step) (map[string]interface{}, error) {
	request, err := update.MaterialRequest()
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if !request.Quantity.IsPositive() {
		return nil, apierr.Validation("quantity must be greater than zero")
	}

	material, err := s.inventoryService.ResolveOrCreateMaterial(ctx, tx, update.SubmittedBy, request.MaterialID, request.MaterialName, request.MaterialUnit)
	if err != nil {
		return nil, err
	}

	exists, err := s.demandRepo.ExistsForStepAndMaterial(ctx, tx, step.ID, material.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if exists {
		return nil, apierr.DuplicateDemand("step %s already demands material %q", step.ID, material.Name)
	}

	demand := &types.MaterialDemand{
		ID:         uuid.New(),
		StepID:     step.ID,
		MaterialID: material.ID,
		Quantity:   request.Quantity,
		Note:       request.Note,
	}
	if _, err := s.demandRepo.Create(ctx, tx, demand); err != nil {
		return nil, apierr.Internal(err)
	}

	if step.Status == types.StepStatusDone {
		if err := s.inventoryService.BookQuantity(ctx, tx, actor.ID, material.ID, request.Quantity, types.MovementReasonMaterialRequest, &step.ID); err != nil {
			return nil, err
		}
	}

	return map[string]interface{}{
		"type":        update.Type,
		"demand_id":   demand.ID,
		"material_id": material.ID,
		"quantity":    request.Quantity,
		"booked_now":  step.Status == types.StepStatusDone,
	}, nil
}

func (s *approvalService) applyPhotoApproval(ctx context.Context, tx *gorm.DB, update *types.PendingUpdate) (map[string]interface{}, error) {
	photoPayload, err := update.PhotoUpload()
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := s.photoRepo.SetApproved(ctx, tx, photoPayload.PhotoID, true); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("photo %s not found", photoPayload.PhotoID)
		}
		return nil, apierr.Internal(err)
	}
	return map[string]interface{}{
		"type":     update.Type,
		"photo_id": photoPayload.PhotoID,
	}, nil
}

func (s *approvalService) applyNote(ctx context.Context, tx *gorm.DB, update *types.PendingUpdate) (map[string]interface{}, error) {
	notePayload, err := update.NoteText()
	if err != nil {
		return nil, apierr.Internal(err)
	}
	note := &types.Note{
		ID:              uuid.New(),
		StepID:          update.StepID,
		Text:            notePayload.Text,
		AuthorID:        update.SubmittedBy,
		CustomerVisible: false,
		CreatedAt:       time.Now(),
	}
	if _, err := s.noteRepo.Create(ctx, tx, note); err != nil {
		return nil, apierr.Internal(err)
	}
	return map[string]interface{}{
		"type":    update.Type,
		"note_id": note.ID,
	}, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// UpdateQueueService accepts field-worker proposals. Submission never touches
// steps or the ledger; the only eager side effect is storing photo bytes,
// hidden until a reviewer approves them.
type UpdateQueueService interface {
	Submit(ctx context.Context, actor types.Actor, stepID uuid.UUID, input SubmitInput) (*types.PendingUpdate, error)
	List(ctx context.Context, actor types.Actor, status *types.UpdateStatus) ([]*types.PendingUpdate, error)
}

type SubmitInput struct {
	Type types.UpdateType

	// STATUS_CHANGE
	NewStatus   *types.StepStatus
	NewProgress *int

	// NOTE
	NoteText string

	// PHOTO_UPLOAD
	PhotoData []byte
	PhotoMime string
	Caption   string

	// MATERIAL_REQUEST
	MaterialID   *uuid.UUID
	MaterialName string
	MaterialUnit string
	Quantity     decimal.Decimal
	RequestNote  string
}

type updateQueueService struct {
	db                *gorm.DB
	log               *logger.Logger
	stepRepo          repos.StepRepo
	pendingUpdateRepo repos.PendingUpdateRepo
	photoRepo         repos.PhotoRepo
	photoStore        PhotoStore
	auditService      AuditService
}

func NewUpdateQueueService(
	db *gorm.DB,
	baseLog *logger.Logger,
	stepRepo repos.StepRepo,
	pendingUpdateRepo repos.PendingUpdateRepo,
	photoRepo repos.PhotoRepo,
	photoStore PhotoStore,
	auditService AuditService,
) UpdateQueueService {
	return &updateQueueService{
		db:                db,
		log:               baseLog.With("service", "UpdateQueueService"),
		stepRepo:          stepRepo,
		pendingUpdateRepo: pendingUpdateRepo,
		photoRepo:         photoRepo,
		photoStore:        photoStore,
		auditService:      auditService,
	}
}

func (s *updateQueueService) Submit(ctx context.Context, actor types.Actor, stepID uuid.UUID, input SubmitInput) (*types.PendingUpdate, error) {
	if err := RequireCapability(actor, types.CapabilityView); err != nil {
		return nil, err
	}
	if _, ok := types.ParseUpdateType(string(input.Type)); !ok {
		return nil, apierr.Validation("unknown update type %q", input.Type)
	}

	var created *types.PendingUpdate
	err := s.db.Transaction(func(tx *gorm.DB) error {
		step, err := s.stepRepo.GetByID(ctx, tx, stepID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("step %s not found", stepID)
			}
			return apierr.Internal(err)
		}

		payload, err := s.buildPayload(ctx, tx, actor, stepID, input)
		if err != nil {
			return err
		}

		update := &types.PendingUpdate{
			ID:          uuid.New(),
			Type:        input.Type,
			StepID:      stepID,
			Status:      types.UpdateStatusAwaiting,
			Payload:     payload,
			SubmittedBy: actor.ID,
			SubmittedAt: time.Now(),
		}
		if _, err := s.pendingUpdateRepo.Create(ctx, tx, update); err != nil {
			return apierr.Internal(err)
		}
		created = update
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditUpdateSubmitted, map[string]interface{}{
			"update_id": update.ID,
			"type":      update.Type,
		}, &step.ProjectID, &stepID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pending update submitted", "update_id", created.ID, "type", created.Type, "step_id", stepID)
	return created, nil
}

func (s *updateQueueService) buildPayload(ctx context.Context, tx *gorm.DB, actor types.Actor, stepID uuid.UUID, input SubmitInput) (datatypes.JSON, error) {
	switch input.Type {
	case types.UpdateTypeStatusChange:
		if input.NewStatus == nil && input.NewProgress == nil {
			return nil, apierr.Validation("a status change needs a new status or a new progress")
		}
		if input.NewStatus != nil {
			if _, ok := types.ParseStepStatus(string(*input.NewStatus)); !ok {
				return nil, apierr.Validation("unknown step status %q", *input.NewStatus)
			}
		}
		if input.NewProgress != nil && (*input.NewProgress < 0 || *input.NewProgress > 100) {
			return nil, apierr.Validation("progress must be between 0 and 100")
		}
		return types.EncodePayload(types.StatusChangePayload{
			NewStatus:   input.NewStatus,
			NewProgress: input.NewProgress,
		})

	case types.UpdateTypeNote:
		text := strings.TrimSpace(input.NoteText)
		if text == "" {
			return nil, apierr.Validation("note text must not be empty")
		}
		return types.EncodePayload(types.NotePayload{Text: text})

	case types.UpdateTypePhotoUpload:
		if len(input.PhotoData) == 0 {
			return nil, apierr.Validation("photo data must not be empty")
		}
		// Bytes go to the store right away; the Photo row stays unapproved
		// and invisible until review. Rejection deletes both again.
		ref, err := s.photoStore.Store(ctx, input.PhotoData, input.PhotoMime)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		photo := &types.Photo{
			ID:         uuid.New(),
			StepID:     stepID,
			StorageRef: ref,
			Caption:    strings.TrimSpace(input.Caption),
			Approved:   false,
			UploadedBy: actor.ID,
			UploadedAt: time.Now(),
		}
		if _, err := s.photoRepo.Create(ctx, tx, photo); err != nil {
			return nil, apierr.Internal(err)
		}
		return types.EncodePayload(types.PhotoUploadPayload{PhotoID: photo.ID, Caption: photo.Caption})

	case types.UpdateTypeMaterialRequest:
		if !input.Quantity.IsPositive() {
			return nil, apierr.Validation("quantity must be greater than zero")
		}
		if input.MaterialID == nil && strings.TrimSpace(input.MaterialName) == "" {
			return nil, apierr.Validation("material id or name is required")
		}
		return types.EncodePayload(types.MaterialRequestPayload{
			MaterialID:   input.MaterialID,
			MaterialName: strings.TrimSpace(input.MaterialName),
			MaterialUnit: strings.TrimSpace(input.MaterialUnit),
			Quantity:     input.Quantity,
			Note:         strings.TrimSpace(input.RequestNote),
		})
	}
	return nil, apierr.Validation("unknown update type %q", input.Type)
}

func (s *updateQueueService) List(ctx context.Context, actor types.Actor, status *types.UpdateStatus) ([]*types.PendingUpdate, error) {
	if err := RequireCapability(actor, types.CapabilityApprove); err != nil {
		return nil, err
	}
	updates, err := s.pendingUpdateRepo.List(ctx, nil, status)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return updates, nil
}

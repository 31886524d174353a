package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type AuditService interface {
	// Record appends an entry inside the caller's transaction so the audit
	// row commits or rolls back together with the change it describes.
	Record(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, action string, details map[string]interface{}, projectID, stepID *uuid.UUID) error
	List(ctx context.Context, actor types.Actor, limit int) ([]*types.AuditLogEntry, error)
	ListByProject(ctx context.Context, actor types.Actor, projectID uuid.UUID, limit int) ([]*types.AuditLogEntry, error)
}

type auditService struct {
	db           *gorm.DB
	log          *logger.Logger
	auditLogRepo repos.AuditLogRepo
}

func NewAuditService(db *gorm.DB, baseLog *logger.Logger, auditLogRepo repos.AuditLogRepo) AuditService {
	return &auditService{
		db:           db,
		log:          baseLog.With("service", "AuditService"),
		auditLogRepo: auditLogRepo,
	}
}

func (s *auditService) Record(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, action string, details map[string]interface{}, projectID, stepID *uuid.UUID) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return apierr.Internal(err)
	}
	entry := &types.AuditLogEntry{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		Details:   raw,
		ProjectID: projectID,
		StepID:    stepID,
		CreatedAt: time.Now(),
	}
	if _, err := s.auditLogRepo.Create(ctx, tx, entry); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, actor types.Actor, limit int) ([]*types.AuditLogEntry, error) {
	if err := RequireCapability(actor, types.CapabilityApprove); err != nil {
		return nil, err
	}
	entries, err := s.auditLogRepo.List(ctx, nil, limit)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return entries, nil
}

func (s *auditService) ListByProject(ctx context.Context, actor types.Actor, projectID uuid.UUID, limit int) ([]*types.AuditLogEntry, error) {
	if err := RequireCapability(actor, types.CapabilityApprove); err != nil {
		return nil, err
	}
	entries, err := s.auditLogRepo.ListByProject(ctx, nil, projectID, limit)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return entries, nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// DemandService manages the step<->material links. It never touches the
// ledger: stock moves only when a step crosses the done edge.
type DemandService interface {
	AddDemand(ctx context.Context, actor types.Actor, stepID uuid.UUID, input AddDemandInput) (*types.MaterialDemand, error)
	UpdateDemandQuantity(ctx context.Context, actor types.Actor, linkID uuid.UUID, quantity decimal.Decimal) (*types.MaterialDemand, error)
	RemoveDemand(ctx context.Context, actor types.Actor, linkID uuid.UUID) error
}

type AddDemandInput struct {
	// Either MaterialID, or MaterialName (+ MaterialUnit for a new entry).
	MaterialID   *uuid.UUID
	MaterialName string
	MaterialUnit string
	Quantity     decimal.Decimal
	Note         string
}

type demandService struct {
	db               *gorm.DB
	log              *logger.Logger
	stepRepo         repos.StepRepo
	demandRepo       repos.DemandRepo
	inventoryService InventoryService
	auditService     AuditService
}

func NewDemandService(
	db *gorm.DB,
	baseLog *logger.Logger,
	stepRepo repos.StepRepo,
	demandRepo repos.DemandRepo,
	inventoryService InventoryService,
	auditService AuditService,
) DemandService {
	return &demandService{
		db:               db,
		log:              baseLog.With("service", "DemandService"),
		stepRepo:         stepRepo,
		demandRepo:       demandRepo,
		inventoryService: inventoryService,
		auditService:     auditService,
	}
}

func (s *demandService) AddDemand(ctx context.Context, actor types.Actor, stepID uuid.UUID, input AddDemandInput) (*types.MaterialDemand, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	if !input.Quantity.IsPositive() {
		return nil, apierr.Validation("quantity must be greater than zero")
	}

	var created *types.MaterialDemand
	err := s.db.Transaction(func(tx *gorm.DB) error {
		step, err := s.loadStep(ctx, tx, stepID)
		if err != nil {
			return err
		}
		if step.Status == types.StepStatusDone {
			return apierr.StepFinalized("step %s is done; its material set is booked and frozen", stepID)
		}

		material, err := s.inventoryService.ResolveOrCreateMaterial(ctx, tx, actor.ID, input.MaterialID, input.MaterialName, input.MaterialUnit)
		if err != nil {
			return err
		}

		exists, err := s.demandRepo.ExistsForStepAndMaterial(ctx, tx, stepID, material.ID)
		if err != nil {
			return apierr.Internal(err)
		}
		if exists {
			return apierr.DuplicateDemand("step %s already demands material %q; update the existing link instead", stepID, material.Name)
		}

		demand := &types.MaterialDemand{
			ID:         uuid.New(),
			StepID:     stepID,
			MaterialID: material.ID,
			Quantity:   input.Quantity,
			Note:       strings.TrimSpace(input.Note),
		}
		if _, err := s.demandRepo.Create(ctx, tx, demand); err != nil {
			return apierr.Internal(err)
		}
		demand.Material = material
		created = demand
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditDemandAdded, map[string]interface{}{
			"demand_id":   demand.ID,
			"material_id": material.ID,
			"quantity":    demand.Quantity,
		}, &step.ProjectID, &stepID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *demandService) UpdateDemandQuantity(ctx context.Context, actor types.Actor, linkID uuid.UUID, quantity decimal.Decimal) (*types.MaterialDemand, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, apierr.Validation("quantity must be greater than zero")
	}

	var updated *types.MaterialDemand
	err := s.db.Transaction(func(tx *gorm.DB) error {
		demand, step, err := s.loadDemandWithStep(ctx, tx, linkID)
		if err != nil {
			return err
		}
		if step.Status == types.StepStatusDone {
			return apierr.StepFinalized("step %s is done; its material set is booked and frozen", step.ID)
		}
		before := demand.Quantity
		if err := s.demandRepo.UpdateQuantity(ctx, tx, linkID, quantity); err != nil {
			return apierr.Internal(err)
		}
		demand.Quantity = quantity
		updated = demand
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditDemandUpdated, map[string]interface{}{
			"demand_id":       demand.ID,
			"material_id":     demand.MaterialID,
			"before_quantity": before,
			"after_quantity":  quantity,
		}, &step.ProjectID, &step.ID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *demandService) RemoveDemand(ctx context.Context, actor types.Actor, linkID uuid.UUID) error {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		demand, step, err := s.loadDemandWithStep(ctx, tx, linkID)
		if err != nil {
			return err
		}
		if step.Status == types.StepStatusDone {
			return apierr.StepFinalized("step %s is done; its material set is booked and frozen", step.ID)
		}
		if err := s.demandRepo.Delete(ctx, tx, linkID); err != nil {
			return apierr.Internal(err)
		}
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditDemandRemoved, map[string]interface{}{
			"demand_id":   demand.ID,
			"material_id": demand.MaterialID,
			"quantity":    demand.Quantity,
		}, &step.ProjectID, &step.ID)
	})
}

func (s *demandService) loadStep(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) (*types.Step, error) {
	step, err := s.stepRepo.GetByID(ctx, tx, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("step %s not found", stepID)
		}
		return nil, apierr.Internal(err)
	}
	return step, nil
}

func (s *demandService) loadDemandWithStep(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) (*types.MaterialDemand, *types.Step, error) {
	demand, err := s.demandRepo.GetByID(ctx, tx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound("demand link %s not found", linkID)
		}
		return nil, nil, apierr.Internal(err)
	}
	step, err := s.loadStep(ctx, tx, demand.StepID)
	if err != nil {
		return nil, nil, err
	}
	return demand, step, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// InventoryService owns the stock ledger. Every stock write goes through it,
// always paired with an append-only StockMovement row in the same
// transaction.
type InventoryService interface {
	CreateMaterial(ctx context.Context, actor types.Actor, name, unit string, stock decimal.Decimal) (*types.Material, error)
	UpdateMaterial(ctx context.Context, actor types.Actor, id uuid.UUID, name, unit string, stock *decimal.Decimal) (*types.Material, error)
	DeleteMaterial(ctx context.Context, actor types.Actor, id uuid.UUID) error
	ListMaterials(ctx context.Context, actor types.Actor) ([]*types.Material, error)
	ListMovements(ctx context.Context, actor types.Actor, materialID uuid.UUID) ([]*types.StockMovement, error)

	// AdjustStock applies a signed delta. The result may be negative; that is
	// how shortfall stays observable, so nothing here clamps.
	AdjustStock(ctx context.Context, actor types.Actor, id uuid.UUID, delta decimal.Decimal) (*types.Material, error)
	// SetStock is a staff correction to an absolute value, >= 0.
	SetStock(ctx context.Context, actor types.Actor, id uuid.UUID, value decimal.Decimal) (*types.Material, error)

	// ResolveOrCreateMaterial returns the material with the given id, or else
	// matches name case-insensitively, or else creates a new entry with zero
	// stock. Runs inside the caller's transaction.
	ResolveOrCreateMaterial(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, materialID *uuid.UUID, name, unit string) (*types.Material, error)

	// BookStepCompletion decrements stock for every demand link of the step,
	// failing the whole booking if any single material lacks stock.
	BookStepCompletion(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, stepID uuid.UUID) error
	// ReleaseStepCompletion is the exact inverse; it never fails on stock.
	ReleaseStepCompletion(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, stepID uuid.UUID) error
	// BookQuantity decrements a single material with a sufficiency check,
	// used when a material request lands on an already finished step.
	BookQuantity(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, materialID uuid.UUID, quantity decimal.Decimal, reason string, stepID *uuid.UUID) error
}

type inventoryService struct {
	db                *gorm.DB
	log               *logger.Logger
	materialRepo      repos.MaterialRepo
	demandRepo        repos.DemandRepo
	stockMovementRepo repos.StockMovementRepo
	auditService      AuditService
}

func NewInventoryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	materialRepo repos.MaterialRepo,
	demandRepo repos.DemandRepo,
	stockMovementRepo repos.StockMovementRepo,
	auditService AuditService,
) InventoryService {
	return &inventoryService{
		db:                db,
		log:               baseLog.With("service", "InventoryService"),
		materialRepo:      materialRepo,
		demandRepo:        demandRepo,
		stockMovementRepo: stockMovementRepo,
		auditService:      auditService,
	}
}

func (s *inventoryService) CreateMaterial(ctx context.Context, actor types.Actor, name, unit string, stock decimal.Decimal) (*types.Material, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" {
		return nil, apierr.Validation("material name is required")
	}
	if unit == "" {
		return nil, apierr.Validation("material unit is required")
	}
	if stock.IsNegative() {
		return nil, apierr.Validation("initial stock must not be negative")
	}

	material := &types.Material{
		ID:    uuid.New(),
		Name:  name,
		Unit:  unit,
		Stock: stock,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.materialRepo.Create(ctx, tx, material); err != nil {
			return apierr.Internal(err)
		}
		if !stock.IsZero() {
			movement := &types.StockMovement{
				ID:         uuid.New(),
				MaterialID: material.ID,
				Delta:      stock,
				Reason:     types.MovementReasonManualAdjust,
				ActorID:    actor.ID,
				CreatedAt:  time.Now(),
			}
			if _, err := s.stockMovementRepo.Create(ctx, tx, movement); err != nil {
				return apierr.Internal(err)
			}
		}
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditMaterialCreated, map[string]interface{}{
			"material_id": material.ID,
			"name":        material.Name,
			"unit":        material.Unit,
			"stock":       material.Stock,
		}, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("material created", "material_id", material.ID, "name", material.Name)
	return material, nil
}

func (s *inventoryService) UpdateMaterial(ctx context.Context, actor types.Actor, id uuid.UUID, name, unit string, stock *decimal.Decimal) (*types.Material, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("material name is required")
	}
	if stock != nil && stock.IsNegative() {
		return nil, apierr.Validation("stock must not be negative")
	}

	var updated *types.Material
	err := s.db.Transaction(func(tx *gorm.DB) error {
		material, err := s.materialRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("material %s not found", id)
			}
			return apierr.Internal(err)
		}
		before := *material
		material.Name = name
		if unit = strings.TrimSpace(unit); unit != "" {
			material.Unit = unit
		}
		if stock != nil && !stock.Equal(material.Stock) {
			delta := stock.Sub(material.Stock)
			material.Stock = *stock
			movement := &types.StockMovement{
				ID:         uuid.New(),
				MaterialID: material.ID,
				Delta:      delta,
				Reason:     types.MovementReasonCorrection,
				ActorID:    actor.ID,
				CreatedAt:  time.Now(),
			}
			if _, err := s.stockMovementRepo.Create(ctx, tx, movement); err != nil {
				return apierr.Internal(err)
			}
		}
		if err := s.materialRepo.Update(ctx, tx, material); err != nil {
			return apierr.Internal(err)
		}
		updated = material
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditMaterialUpdated, map[string]interface{}{
			"material_id":  material.ID,
			"before_name":  before.Name,
			"after_name":   material.Name,
			"before_stock": before.Stock,
			"after_stock":  material.Stock,
		}, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMaterial removes the material together with every demand link that
// references it, in one transaction, so no link ever dangles.
func (s *inventoryService) DeleteMaterial(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		material, err := s.materialRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("material %s not found", id)
			}
			return apierr.Internal(err)
		}
		if err := s.demandRepo.DeleteByMaterialID(ctx, tx, id); err != nil {
			return apierr.Internal(err)
		}
		if err := s.materialRepo.Delete(ctx, tx, id); err != nil {
			return apierr.Internal(err)
		}
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditMaterialDeleted, map[string]interface{}{
			"material_id": material.ID,
			"name":        material.Name,
		}, nil, nil)
	})
}

func (s *inventoryService) ListMaterials(ctx context.Context, actor types.Actor) ([]*types.Material, error) {
	if err := RequireCapability(actor, types.CapabilityView); err != nil {
		return nil, err
	}
	materials, err := s.materialRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return materials, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, actor types.Actor, materialID uuid.UUID) ([]*types.StockMovement, error) {
	if err := RequireCapability(actor, types.CapabilityView); err != nil {
		return nil, err
	}
	movements, err := s.stockMovementRepo.ListByMaterial(ctx, nil, materialID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return movements, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, actor types.Actor, id uuid.UUID, delta decimal.Decimal) (*types.Material, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	var updated *types.Material
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyDelta(ctx, tx, actor.ID, id, delta, types.MovementReasonManualAdjust, nil); err != nil {
			return err
		}
		material, err := s.materialRepo.GetByID(ctx, tx, id)
		if err != nil {
			return apierr.Internal(err)
		}
		updated = material
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditStockAdjusted, map[string]interface{}{
			"material_id": id,
			"delta":       delta,
			"new_stock":   material.Stock,
		}, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *inventoryService) SetStock(ctx context.Context, actor types.Actor, id uuid.UUID, value decimal.Decimal) (*types.Material, error) {
	if err := RequireCapability(actor, types.CapabilityEditMaterial); err != nil {
		return nil, err
	}
	if value.IsNegative() {
		return nil, apierr.Validation("stock must not be negative")
	}

	var updated *types.Material
	err := s.db.Transaction(func(tx *gorm.DB) error {
		material, err := s.materialRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("material %s not found", id)
			}
			return apierr.Internal(err)
		}
		delta := value.Sub(material.Stock)
		if err := s.materialRepo.SetStock(ctx, tx, id, value); err != nil {
			return apierr.Internal(err)
		}
		if !delta.IsZero() {
			movement := &types.StockMovement{
				ID:         uuid.New(),
				MaterialID: id,
				Delta:      delta,
				Reason:     types.MovementReasonCorrection,
				ActorID:    actor.ID,
				CreatedAt:  time.Now(),
			}
			if _, err := s.stockMovementRepo.Create(ctx, tx, movement); err != nil {
				return apierr.Internal(err)
			}
		}
		material.Stock = value
		updated = material
		return s.auditService.Record(ctx, tx, actor.ID, types.AuditStockSet, map[string]interface{}{
			"material_id": id,
			"delta":       delta,
			"new_stock":   value,
		}, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *inventoryService) ResolveOrCreateMaterial(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, materialID *uuid.UUID, name, unit string) (*types.Material, error) {
	if materialID != nil {
		material, err := s.materialRepo.GetByID(ctx, tx, *materialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierr.NotFound("material %s not found", *materialID)
			}
			return nil, apierr.Internal(err)
		}
		return material, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("material id or name is required")
	}
	// Match existing catalog entries first so "flexkleber" does not create a
	// duplicate of "Flexkleber".
	material, err := s.materialRepo.FindByName(ctx, tx, name)
	if err == nil {
		return material, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.Internal(err)
	}
	if unit = strings.TrimSpace(unit); unit == "" {
		return nil, apierr.Validation("unit is required for a new material")
	}
	created := &types.Material{
		ID:    uuid.New(),
		Name:  name,
		Unit:  unit,
		Stock: decimal.Zero,
	}
	if _, err := s.materialRepo.Create(ctx, tx, created); err != nil {
		return nil, apierr.Internal(err)
	}
	s.log.Info("material created from request", "material_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *inventoryService) BookStepCompletion(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, stepID uuid.UUID) error {
	demands, err := s.demandRepo.GetByStepID(ctx, tx, stepID)
	if err != nil {
		return apierr.Internal(err)
	}
	// Validate the whole set before touching the ledger so a failure leaves
	// nothing half-booked even without the surrounding rollback.
	for _, demand := range demands {
		if demand.Material == nil {
			return apierr.NotFound("material %s not found", demand.MaterialID)
		}
		if demand.Material.Stock.LessThan(demand.Quantity) {
			return apierr.InsufficientStock(
				"material %q has stock %s, step needs %s",
				demand.Material.Name, demand.Material.Stock, demand.Quantity,
			)
		}
	}
	for _, demand := range demands {
		if err := s.applyDelta(ctx, tx, actorID, demand.MaterialID, demand.Quantity.Neg(), types.MovementReasonStepDone, &stepID); err != nil {
			return err
		}
	}
	return nil
}

func (s *inventoryService) ReleaseStepCompletion(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, stepID uuid.UUID) error {
	demands, err := s.demandRepo.GetByStepID(ctx, tx, stepID)
	if err != nil {
		return apierr.Internal(err)
	}
	for _, demand := range demands {
		if err := s.applyDelta(ctx, tx, actorID, demand.MaterialID, demand.Quantity, types.MovementReasonStepReopened, &stepID); err != nil {
			return err
		}
	}
	return nil
}

func (s *inventoryService) BookQuantity(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, materialID uuid.UUID, quantity decimal.Decimal, reason string, stepID *uuid.UUID) error {
	material, err := s.materialRepo.GetByID(ctx, tx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("material %s not found", materialID)
		}
		return apierr.Internal(err)
	}
	if material.Stock.LessThan(quantity) {
		return apierr.InsufficientStock(
			"material %q has stock %s, request needs %s",
			material.Name, material.Stock, quantity,
		)
	}
	return s.applyDelta(ctx, tx, actorID, materialID, quantity.Neg(), reason, stepID)
}

func (s *inventoryService) applyDelta(ctx context.Context, tx *gorm.DB, actorID, materialID uuid.UUID, delta decimal.Decimal, reason string, stepID *uuid.UUID) error {
	if err := s.materialRepo.AddToStock(ctx, tx, materialID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("material %s not found", materialID)
		}
		return apierr.Internal(err)
	}
	movement := &types.StockMovement{
		ID:         uuid.New(),
		MaterialID: materialID,
		Delta:      delta,
		Reason:     reason,
		ActorID:    actorID,
		StepID:     stepID,
		CreatedAt:  time.Now(),
	}
	if _, err := s.stockMovementRepo.Create(ctx, tx, movement); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

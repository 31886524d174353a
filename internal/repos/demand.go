package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type DemandRepo interface {
	Create(ctx context.Context, tx *gorm.DB, demand *types.MaterialDemand) (*types.MaterialDemand, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MaterialDemand, error)
	GetByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.MaterialDemand, error)
	ExistsForStepAndMaterial(ctx context.Context, tx *gorm.DB, stepID, materialID uuid.UUID) (bool, error)
	UpdateQuantity(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity decimal.Decimal) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error
	// ListOutstanding returns demand links whose owning step is not done,
	// optionally restricted to one project. Material rows come preloaded.
	ListOutstanding(ctx context.Context, tx *gorm.DB, projectID *uuid.UUID) ([]*types.MaterialDemand, error)
}

type demandRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDemandRepo(db *gorm.DB, baseLog *logger.Logger) DemandRepo {
	return &demandRepo{db: db, log: baseLog.With("repo", "DemandRepo")}
}

func (r *demandRepo) Create(ctx context.Context, tx *gorm.DB, demand *types.MaterialDemand) (*types.MaterialDemand, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(demand).Error; err != nil {
		return nil, err
	}
	return demand, nil
}

func (r *demandRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MaterialDemand, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.MaterialDemand
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *demandRepo) GetByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.MaterialDemand, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MaterialDemand
	if err := transaction.WithContext(ctx).
		Preload("Material").
		Where("step_id = ?", stepID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *demandRepo) ExistsForStepAndMaterial(ctx context.Context, tx *gorm.DB, stepID, materialID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.MaterialDemand{}).
		Where("step_id = ? AND material_id = ?", stepID, materialID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *demandRepo) UpdateQuantity(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity decimal.Decimal) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.MaterialDemand{}).
		Where("id = ?", id).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *demandRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.MaterialDemand{}).Error
}

func (r *demandRepo) DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("material_id = ?", materialID).Delete(&types.MaterialDemand{}).Error
}

func (r *demandRepo) ListOutstanding(ctx context.Context, tx *gorm.DB, projectID *uuid.UUID) ([]*types.MaterialDemand, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Preload("Material").
		Joins("JOIN step ON step.id = material_demand.step_id").
		Where("step.status <> ?", types.StepStatusDone)
	if projectID != nil {
		query = query.Where("step.project_id = ?", *projectID)
	}
	var results []*types.MaterialDemand
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type MaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Material, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Material, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error)
	FindByName(ctx context.Context, tx *gorm.DB, name string) (*types.Material, error)
	Update(ctx context.Context, tx *gorm.DB, material *types.Material) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// AddToStock applies a signed delta in a single UPDATE so concurrent
	// writers cannot lose increments. It never clamps the result.
	AddToStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
	SetStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, value decimal.Decimal) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (r *materialRepo) Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(material).Error; err != nil {
		return nil, err
	}
	return material, nil
}

func (r *materialRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Material
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Material
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Material
	if err := transaction.WithContext(ctx).Order("name asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) FindByName(ctx context.Context, tx *gorm.DB, name string) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Material
	if err := transaction.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepo) Update(ctx context.Context, tx *gorm.DB, material *types.Material) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(material).Error
}

func (r *materialRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Material{}).Error
}

func (r *materialRepo) AddToStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Material{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *materialRepo) SetStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, value decimal.Decimal) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Material{}).
		Where("id = ?", id).
		Update("stock", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

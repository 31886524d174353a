package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type StockMovementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, movement *types.StockMovement) (*types.StockMovement, error)
	ListByMaterial(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.StockMovement, error)
}

type stockMovementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStockMovementRepo(db *gorm.DB, baseLog *logger.Logger) StockMovementRepo {
	return &stockMovementRepo{db: db, log: baseLog.With("repo", "StockMovementRepo")}
}

func (r *stockMovementRepo) Create(ctx context.Context, tx *gorm.DB, movement *types.StockMovement) (*types.StockMovement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *stockMovementRepo) ListByMaterial(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.StockMovement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StockMovement
	if err := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type PhotoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, photo *types.Photo) (*types.Photo, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Photo, error)
	GetByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, approvedOnly bool) ([]*types.Photo, error)
	SetApproved(ctx context.Context, tx *gorm.DB, id uuid.UUID, approved bool) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type photoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhotoRepo(db *gorm.DB, baseLog *logger.Logger) PhotoRepo {
	return &photoRepo{db: db, log: baseLog.With("repo", "PhotoRepo")}
}

func (r *photoRepo) Create(ctx context.Context, tx *gorm.DB, photo *types.Photo) (*types.Photo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

func (r *photoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Photo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Photo
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *photoRepo) GetByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, approvedOnly bool) ([]*types.Photo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Where("step_id = ?", stepID)
	if approvedOnly {
		query = query.Where("approved = ?", true)
	}
	var results []*types.Photo
	if err := query.Order("uploaded_at desc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *photoRepo) SetApproved(ctx context.Context, tx *gorm.DB, id uuid.UUID, approved bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Photo{}).
		Where("id = ?", id).
		Update("approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *photoRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Photo{}).Error
}

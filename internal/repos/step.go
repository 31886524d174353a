package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type StepRepo interface {
	Create(ctx context.Context, tx *gorm.DB, steps []*types.Step) ([]*types.Step, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Step, error)
	GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Step, error)
	// TransitionStatus flips status (and optionally progress) only if the row
	// still carries fromStatus. Returns false when another writer got there
	// first; callers treat that as a lost race, not success.
	TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromStatus, toStatus types.StepStatus, progress *int) (bool, error)
	UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress int) error
}

type stepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepRepo(db *gorm.DB, baseLog *logger.Logger) StepRepo {
	return &stepRepo{db: db, log: baseLog.With("repo", "StepRepo")}
}

func (r *stepRepo) Create(ctx context.Context, tx *gorm.DB, steps []*types.Step) ([]*types.Step, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(steps) == 0 {
		return []*types.Step{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *stepRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Step, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Step
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *stepRepo) GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Step, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Step
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("order_index asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *stepRepo) TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromStatus, toStatus types.StepStatus, progress *int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]interface{}{"status": toStatus}
	if progress != nil {
		updates["progress"] = *progress
	}
	res := transaction.WithContext(ctx).
		Model(&types.Step{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *stepRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Step{}).
		Where("id = ?", id).
		Update("progress", progress)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type PendingUpdateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, update *types.PendingUpdate) (*types.PendingUpdate, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PendingUpdate, error)
	List(ctx context.Context, tx *gorm.DB, status *types.UpdateStatus) ([]*types.PendingUpdate, error)
	// MarkProcessed flips an awaiting update to a terminal status. The WHERE
	// clause on the current status is the idempotency guard: a second
	// reviewer gets zero rows affected and must not apply any effect.
	MarkProcessed(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UpdateStatus, reviewerID uuid.UUID, reason string) (bool, error)
}

type pendingUpdateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPendingUpdateRepo(db *gorm.DB, baseLog *logger.Logger) PendingUpdateRepo {
	return &pendingUpdateRepo{db: db, log: baseLog.With("repo", "PendingUpdateRepo")}
}

func (r *pendingUpdateRepo) Create(ctx context.Context, tx *gorm.DB, update *types.PendingUpdate) (*types.PendingUpdate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(update).Error; err != nil {
		return nil, err
	}
	return update, nil
}

func (r *pendingUpdateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PendingUpdate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.PendingUpdate
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *pendingUpdateRepo) List(ctx context.Context, tx *gorm.DB, status *types.UpdateStatus) ([]*types.PendingUpdate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Order("submitted_at desc")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var results []*types.PendingUpdate
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pendingUpdateRepo) MarkProcessed(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UpdateStatus, reviewerID uuid.UUID, reason string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
	}
	if reason != "" {
		updates["rejection_reason"] = reason
	}
	res := transaction.WithContext(ctx).
		Model(&types.PendingUpdate{}).
		Where("id = ? AND status = ?", id, types.UpdateStatusAwaiting).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

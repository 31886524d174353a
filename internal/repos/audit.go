package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// AuditLogRepo is insert-and-read only; the audit trail is append-only.
type AuditLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.AuditLogEntry) (*types.AuditLogEntry, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.AuditLogEntry, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, limit int) ([]*types.AuditLogEntry, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (r *auditLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.AuditLogEntry) (*types.AuditLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *auditLogRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.AuditLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var results []*types.AuditLogEntry
	if err := transaction.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auditLogRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, limit int) ([]*types.AuditLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var results []*types.AuditLogEntry
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

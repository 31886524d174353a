package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Project, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Project
	if err := transaction.WithContext(ctx).
		Preload("Address").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step.order_index asc")
		}).
		Preload("Steps.Demands").
		Preload("Steps.Demands.Material").
		Preload("Steps.Notes").
		Preload("Steps.Photos").
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Project
	if err := transaction.WithContext(ctx).
		Preload("Address").
		Preload("Steps").
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

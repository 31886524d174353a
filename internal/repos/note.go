package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type NoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, note *types.Note) (*types.Note, error)
	GetByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.Note, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{db: db, log: baseLog.With("repo", "NoteRepo")}
}

func (r *noteRepo) Create(ctx context.Context, tx *gorm.DB, note *types.Note) (*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (r *noteRepo) GetByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Note
	if err := transaction.WithContext(ctx).
		Where("step_id = ?", stepID).
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

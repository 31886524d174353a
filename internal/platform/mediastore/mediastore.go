// Package mediastore keeps photo bytes in their own table, addressed by an
// opaque ref. The core only ever sees the ref.
package mediastore

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
)

type PhotoBlob struct {
	Ref       string    `gorm:"column:ref;primaryKey"`
	MimeType  string    `gorm:"column:mime_type;not null"`
	Data      []byte    `gorm:"column:data;not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (PhotoBlob) TableName() string { return "photo_blob" }

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) (*Store, error) {
	if err := db.AutoMigrate(&PhotoBlob{}); err != nil {
		return nil, fmt.Errorf("migrate photo_blob: %w", err)
	}
	return &Store{db: db, log: baseLog.With("service", "MediaStore")}, nil
}

func (s *Store) Store(ctx context.Context, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	blob := &PhotoBlob{
		Ref:      uuid.New().String(),
		MimeType: mimeType,
		Data:     data,
	}
	if err := s.db.WithContext(ctx).Create(blob).Error; err != nil {
		return "", fmt.Errorf("store photo blob: %w", err)
	}
	return blob.Ref, nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := s.db.WithContext(ctx).Where("ref = ?", ref).Delete(&PhotoBlob{}).Error; err != nil {
		return fmt.Errorf("delete photo blob %s: %w", ref, err)
	}
	return nil
}

// RenderURL inlines the bytes as a data URL, matching how the customer view
// embeds photos. Missing refs render as an empty string.
func (s *Store) RenderURL(ref string) string {
	var blob PhotoBlob
	if err := s.db.Where("ref = ?", ref).First(&blob).Error; err != nil {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", blob.MimeType, base64.StdEncoding.EncodeToString(blob.Data))
}

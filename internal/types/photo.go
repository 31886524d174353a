package types

import (
	"time"

	"github.com/google/uuid"
)

// Photo references bytes held by the photo store; StorageRef is opaque here.
type Photo struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StepID     uuid.UUID `gorm:"type:uuid;column:step_id;not null;index" json:"step_id"`
	StorageRef string    `gorm:"column:storage_ref;not null" json:"storage_ref"`
	Caption    string    `gorm:"column:caption" json:"caption,omitempty"`
	Approved   bool      `gorm:"column:approved;not null;default:false" json:"approved"`
	UploadedBy uuid.UUID `gorm:"type:uuid;column:uploaded_by;not null" json:"uploaded_by"`
	UploadedAt time.Time `gorm:"column:uploaded_at;not null" json:"uploaded_at"`
}

func (Photo) TableName() string { return "photo" }

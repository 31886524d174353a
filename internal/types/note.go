package types

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StepID   uuid.UUID `gorm:"type:uuid;column:step_id;not null;index" json:"step_id"`
	Text     string    `gorm:"column:text;not null" json:"text"`
	AuthorID uuid.UUID `gorm:"type:uuid;column:author_id;not null" json:"author_id"`
	// Notes created from approved field-worker updates start hidden from the
	// customer view.
	CustomerVisible bool      `gorm:"column:customer_visible;not null;default:false" json:"customer_visible"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (Note) TableName() string { return "note" }

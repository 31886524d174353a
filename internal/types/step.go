package types

import (
	"time"

	"github.com/google/uuid"
)

type StepStatus string

const (
	StepStatusOpen       StepStatus = "open"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusDone       StepStatus = "done"
)

func ParseStepStatus(s string) (StepStatus, bool) {
	switch StepStatus(s) {
	case StepStatusOpen, StepStatusInProgress, StepStatusDone:
		return StepStatus(s), true
	}
	return "", false
}

type Step struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;column:project_id;not null;index" json:"project_id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description" json:"description,omitempty"`
	StartDate   time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate     time.Time  `gorm:"column:end_date;not null" json:"end_date"`
	Status      StepStatus `gorm:"column:status;not null;default:open" json:"status"`
	Progress    int        `gorm:"column:progress;not null;default:0" json:"progress"`
	// Position of the step inside its project's timeline, starting at 1.
	OrderIndex int `gorm:"column:order_index;not null" json:"order_index"`

	Demands []MaterialDemand `gorm:"foreignKey:StepID" json:"demands,omitempty"`
	Photos  []Photo          `gorm:"foreignKey:StepID" json:"photos,omitempty"`
	Notes   []Note           `gorm:"foreignKey:StepID" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Step) TableName() string { return "step" }

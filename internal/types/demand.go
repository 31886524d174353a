package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialDemand links a step to a material it consumes. A step demands a
// given material at most once; a second demand must update the existing
// link's quantity instead.
type MaterialDemand struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StepID     uuid.UUID       `gorm:"type:uuid;column:step_id;not null;uniqueIndex:idx_demand_step_material,priority:1" json:"step_id"`
	MaterialID uuid.UUID       `gorm:"type:uuid;column:material_id;not null;uniqueIndex:idx_demand_step_material,priority:2" json:"material_id"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:decimal(20,4);not null" json:"quantity"`
	Note       string          `gorm:"column:note" json:"note,omitempty"`

	Material *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MaterialDemand) TableName() string { return "material_demand" }

package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Material struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;index" json:"name"`
	Unit string    `gorm:"column:unit;not null" json:"unit"`
	// Physical warehouse stock. May go negative: that means more has been
	// booked than is physically present, and the overshoot is what needs
	// reordering.
	Stock decimal.Decimal `gorm:"column:stock;type:decimal(20,4);not null" json:"stock"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Material) TableName() string { return "material" }

// Reason tags for stock movements.
const (
	MovementReasonManualAdjust    = "manual_adjust"
	MovementReasonCorrection      = "correction"
	MovementReasonStepDone        = "step_done"
	MovementReasonStepReopened    = "step_reopened"
	MovementReasonMaterialRequest = "material_request"
)

// StockMovement is an append-only record of every ledger delta. Rows are
// never updated or deleted; current stock equals the sum of all deltas.
type StockMovement struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID       `gorm:"type:uuid;column:material_id;not null;index" json:"material_id"`
	Delta      decimal.Decimal `gorm:"column:delta;type:decimal(20,4);not null" json:"delta"`
	Reason     string          `gorm:"column:reason;not null" json:"reason"`
	ActorID    uuid.UUID       `gorm:"type:uuid;column:actor_id;not null" json:"actor_id"`
	StepID     *uuid.UUID      `gorm:"type:uuid;column:step_id;index" json:"step_id,omitempty"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

func (StockMovement) TableName() string { return "stock_movement" }

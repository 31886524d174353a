package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit action tags.
const (
	AuditMaterialCreated  = "MATERIAL_CREATED"
	AuditMaterialUpdated  = "MATERIAL_UPDATED"
	AuditMaterialDeleted  = "MATERIAL_DELETED"
	AuditStockAdjusted    = "STOCK_ADJUSTED"
	AuditStockSet         = "STOCK_SET"
	AuditDemandAdded      = "DEMAND_ADDED"
	AuditDemandUpdated    = "DEMAND_UPDATED"
	AuditDemandRemoved    = "DEMAND_REMOVED"
	AuditStepTransitioned = "STEP_TRANSITIONED"
	AuditUpdateSubmitted  = "UPDATE_SUBMITTED"
	AuditUpdateApproved   = "UPDATE_APPROVED"
	AuditUpdateRejected   = "UPDATE_REJECTED"
	AuditProjectCreated   = "PROJECT_CREATED"
	AuditNoteCreated      = "NOTE_CREATED"
)

// AuditLogEntry rows are append-only; nothing in the codebase updates or
// deletes them.
type AuditLogEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID   uuid.UUID      `gorm:"type:uuid;column:actor_id;not null;index" json:"actor_id"`
	Action    string         `gorm:"column:action;not null;index" json:"action"`
	Details   datatypes.JSON `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	ProjectID *uuid.UUID     `gorm:"type:uuid;column:project_id;index" json:"project_id,omitempty"`
	StepID    *uuid.UUID     `gorm:"type:uuid;column:step_id;index" json:"step_id,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (AuditLogEntry) TableName() string { return "audit_log" }

package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type UpdateType string

const (
	UpdateTypeStatusChange    UpdateType = "STATUS_CHANGE"
	UpdateTypePhotoUpload     UpdateType = "PHOTO_UPLOAD"
	UpdateTypeNote            UpdateType = "NOTE"
	UpdateTypeMaterialRequest UpdateType = "MATERIAL_REQUEST"
)

func ParseUpdateType(s string) (UpdateType, bool) {
	switch UpdateType(s) {
	case UpdateTypeStatusChange, UpdateTypePhotoUpload, UpdateTypeNote, UpdateTypeMaterialRequest:
		return UpdateType(s), true
	}
	return "", false
}

type UpdateStatus string

const (
	UpdateStatusAwaiting UpdateStatus = "awaiting"
	UpdateStatusApproved UpdateStatus = "approved"
	UpdateStatusRejected UpdateStatus = "rejected"
)

// PendingUpdate is a field-worker change proposal. It has no effect on steps
// or stock until a reviewer approves it; the one exception is PHOTO_UPLOAD,
// whose bytes are stored eagerly but hidden until approval.
type PendingUpdate struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type        UpdateType     `gorm:"column:type;not null" json:"type"`
	StepID      uuid.UUID      `gorm:"type:uuid;column:step_id;not null;index" json:"step_id"`
	Status      UpdateStatus   `gorm:"column:status;not null;default:awaiting;index" json:"status"`
	Payload     datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	SubmittedBy uuid.UUID      `gorm:"type:uuid;column:submitted_by;not null" json:"submitted_by"`
	SubmittedAt time.Time      `gorm:"column:submitted_at;not null" json:"submitted_at"`

	ReviewedBy      *uuid.UUID `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	RejectionReason string     `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
}

func (PendingUpdate) TableName() string { return "pending_update" }

// Exactly one payload shape exists per update type; a STATUS_CHANGE cannot
// carry a material quantity and vice versa.

type StatusChangePayload struct {
	NewStatus   *StepStatus `json:"new_status,omitempty"`
	NewProgress *int        `json:"new_progress,omitempty"`
}

type PhotoUploadPayload struct {
	PhotoID uuid.UUID `json:"photo_id"`
	Caption string    `json:"caption,omitempty"`
}

type NotePayload struct {
	Text string `json:"text"`
}

type MaterialRequestPayload struct {
	// Either an existing material id, or a name (+ unit) asking for a new
	// catalog entry.
	MaterialID   *uuid.UUID      `json:"material_id,omitempty"`
	MaterialName string          `json:"material_name,omitempty"`
	MaterialUnit string          `json:"material_unit,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Note         string          `json:"note,omitempty"`
}

func EncodePayload(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode update payload: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func (u *PendingUpdate) StatusChange() (*StatusChangePayload, error) {
	return decodePayload[StatusChangePayload](u, UpdateTypeStatusChange)
}

func (u *PendingUpdate) PhotoUpload() (*PhotoUploadPayload, error) {
	return decodePayload[PhotoUploadPayload](u, UpdateTypePhotoUpload)
}

func (u *PendingUpdate) NoteText() (*NotePayload, error) {
	return decodePayload[NotePayload](u, UpdateTypeNote)
}

func (u *PendingUpdate) MaterialRequest() (*MaterialRequestPayload, error) {
	return decodePayload[MaterialRequestPayload](u, UpdateTypeMaterialRequest)
}

func decodePayload[T any](u *PendingUpdate, want UpdateType) (*T, error) {
	if u.Type != want {
		return nil, fmt.Errorf("update %s has type %s, not %s", u.ID, u.Type, want)
	}
	var out T
	if err := json.Unmarshal(u.Payload, &out); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", u.Type, err)
	}
	return &out, nil
}

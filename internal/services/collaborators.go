package services

import (
	"context"

	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// PhotoStore holds photo bytes outside the core tables. Refs are opaque.
type PhotoStore interface {
	Store(ctx context.Context, data []byte, mimeType string) (string, error)
	Delete(ctx context.Context, ref string) error
	RenderURL(ref string) string
}

// NotificationPayload is everything the external notifier needs to tell a
// customer about an approved step update. The core computes it and hands it
// off; it never sends anything itself.
type NotificationPayload struct {
	Recipient   string           `json:"recipient"`
	OrderNumber string           `json:"order_number"`
	StepTitle   string           `json:"step_title"`
	NewStatus   types.StepStatus `json:"new_status"`
	Progress    int              `json:"progress"`
}

type Notifier interface {
	Notify(ctx context.Context, payload NotificationPayload)
}

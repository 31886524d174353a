// Package notify ships the default Notifier: it logs the payload and drops
// it. Real delivery (mail, SMS) plugs in behind the same interface.
package notify

import (
	"context"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/services"
)

type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(baseLog *logger.Logger) *LogNotifier {
	return &LogNotifier{log: baseLog.With("service", "LogNotifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, payload services.NotificationPayload) {
	n.log.Info("customer notification",
		"recipient", payload.Recipient,
		"order_number", payload.OrderNumber,
		"step_title", payload.StepTitle,
		"new_status", payload.NewStatus,
		"progress", payload.Progress,
	)
}

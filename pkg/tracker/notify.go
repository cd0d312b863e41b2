package tracker

import (
	"context"
	"log/slog"

	"github.com/ogulcanaydogan/fuellog/pkg/alerts"
)

// dispatch sends alert to every notifier. Failures are logged, not returned.
func dispatch(ctx context.Context, notifiers []alerts.Notifier, alert alerts.Alert, logger *slog.Logger) {
	for _, notifier := range notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"kind", alert.Kind,
				"error", err,
			)
		}
	}
}

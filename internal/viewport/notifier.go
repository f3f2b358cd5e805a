package viewport

import (
	"context"
	"log/slog"
)

// LogNotifier reports notices through the logger. Used when no UI is attached.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier writing to log.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notice at warning level.
func (n *LogNotifier) Notify(ctx context.Context, message string) {
	n.log.WarnContext(ctx, "User notice", "message", message)
}

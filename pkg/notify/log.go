package notify

import (
	"context"

	"github.com/rxtech-lab/argo-scanner/internal/logger"
)

// LogNotifier writes messages to the process log instead of an
// external sink. Used when no webhook is configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Send logs the message and always succeeds.
func (l *LogNotifier) Send(_ context.Context, text string) error {
	l.logger.Info(text)

	return nil
}

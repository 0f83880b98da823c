package client

import (
	"context"

	"github.com/recipeshare/recipeshare-backend/internal/logging"
)

// Notifier shows user-facing outcome messages, e.g. as toasts.
type Notifier interface {
	Success(msg string)
	Failure(msg string, err error)
}

// LogNotifier reports outcomes through the structured logger.
type LogNotifier struct {
	log *logging.Logger
}

func NewLogNotifier(log *logging.Logger) *LogNotifier {
	if log == nil {
		log = logging.Nop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(msg string) {
	n.log.Info(context.Background(), msg)
}

func (n *LogNotifier) Failure(msg string, err error) {
	n.log.Error(context.Background(), msg, err)
}

package notify

import (
	"context"
	"log/slog"
)

// Log writes notifications to the structured log. Used when no broker is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}

	return &Log{logger: logger}
}

func (l *Log) Publish(ctx context.Context, ns []Notification) error {
	for _, n := range ns {
		l.logger.InfoContext(ctx, "notification due",
			"kind", n.Kind,
			"audience", n.Audience,
			"account_id", n.AccountID,
			"email", n.Email,
			"places", len(n.Places),
			"amount", n.Amount.StringFixed(2),
			"reference", n.Reference,
		)
	}

	return nil
}

package notify

import (
	"context"

	"github.com/dmitrijs2005/gowallet/internal/logging"
)

// LogSink writes events to the log. It stands in for mail delivery.
type LogSink struct {
	log logging.Logger
}

func NewLogSink(log logging.Logger) *LogSink {
	return &LogSink{log: log.With("module", "notify")}
}

func (s *LogSink) Deliver(ctx context.Context, e Event) error {
	s.log.Info(ctx, "notification",
		"kind", e.Kind, "subject", e.Subject, "counterpart", e.Counterpart, "amount", e.Amount)
	return nil
}

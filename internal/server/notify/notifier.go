package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/money"
)

// Notifier turns ledger callbacks into events for a Sink.
type Notifier struct {
	sink Sink
	now  func() time.Time
}

func NewNotifier(sink Sink) *Notifier {
	return &Notifier{sink: sink, now: time.Now}
}

func (n *Notifier) NotifyTransferSent(ctx context.Context, subject, counterpart string, amount int64) error {
	return n.sink.Deliver(ctx, n.event(KindSent, subject, counterpart, amount))
}

func (n *Notifier) NotifyTransferReceived(ctx context.Context, subject, counterpart string, amount int64) error {
	return n.sink.Deliver(ctx, n.event(KindReceived, subject, counterpart, amount))
}

func (n *Notifier) event(kind, subject, counterpart string, amount int64) Event {
	return Event{
		Kind:        kind,
		Subject:     subject,
		Counterpart: counterpart,
		Amount:      money.Format(amount),
		At:          n.now().UTC(),
	}
}

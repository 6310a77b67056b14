// Package notify delivers transfer notifications. Delivery is best effort:
// the ledger logs and drops every error returned from here.
package notify

import (
	"context"
	"errors"
	"time"
)

const (
	KindSent     = "transfer_sent"
	KindReceived = "transfer_received"
)

// Event is one notification addressed to Subject.
type Event struct {
	Kind        string    `json:"kind"`
	Subject     string    `json:"subject"`
	Counterpart string    `json:"counterpart"`
	Amount      string    `json:"amount"`
	At          time.Time `json:"at"`
}

// Sink delivers a single event.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Multi fans every event out to all sinks and joins their errors.
type Multi []Sink

func (m Multi) Deliver(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

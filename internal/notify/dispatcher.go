package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Dispatcher fans a state-change notice out to subscribers after the
// transition has committed. Delivery is at-most-once per recipient: a
// failed send is logged and never retried, and one recipient's failure
// does not block the others.
type Dispatcher struct {
	sender  Sender
	logger  *zap.Logger
	timeout time.Duration
}

func NewDispatcher(sender Sender, logger *zap.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: timeout,
	}
}

// Broadcast returns immediately; sends run out-of-band.
func (d *Dispatcher) Broadcast(recipients []string, subject, body string) {
	if len(recipients) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		for _, to := range recipients {
			if err := d.sender.Send(ctx, to, subject, body); err != nil {
				d.logger.Warn("notification delivery failed",
					zap.String("recipient", to),
					zap.String("subject", subject),
					zap.Error(err),
				)
			}
		}
	}()
}

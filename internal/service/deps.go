package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"tickevo.app/backend/common/logger"
	"tickevo.app/backend/core/config"
	"tickevo.app/backend/internal/queue"
	"tickevo.app/backend/internal/store"
)

// Deps is what the services share.
type Deps struct {
	Stores   StoreProvider
	TxRunner TxRunner
	Events   queue.Producer
	Turn     config.TurnConfig
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Events == nil {
		d.Events = queue.NewNoopProducer()
	}
	if d.Turn.TxMaxAttempts < 1 {
		d.Turn.TxMaxAttempts = 1
	}
	if d.Turn.IdleTimeout <= 0 {
		d.Turn.IdleTimeout = 60 * time.Second
	}
	return d
}

// storeContext bounds the store round trips of one request.
func (d Deps) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Turn.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Turn.StoreTimeout)
}

// inTx runs fn in a transaction, retrying when a concurrent writer won.
func (d Deps) inTx(ctx context.Context, op string, fn func(stores StoreProvider) error) error {
	var err error
	for attempt := 1; attempt <= d.Turn.TxMaxAttempts; attempt++ {
		err = d.TxRunner.WithTx(ctx, fn)
		if err == nil || !store.IsRetryable(err) {
			return err
		}

		slog.DebugContext(ctx, "transaction lost a race, retrying",
			"op", op,
			"attempt", attempt,
			"error", err)

		if attempt == d.Turn.TxMaxAttempts {
			break
		}
		backoff := time.Duration(attempt)*5*time.Millisecond + time.Duration(rand.IntN(5))*time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", op, d.Turn.TxMaxAttempts, err)
}

// publish announces committed changes. Delivery is best effort.
func (d Deps) publish(ctx context.Context, events []queue.Event) {
	for _, evt := range events {
		evtCtx := logger.WithLogFields(ctx, logger.LogFields{
			TicketID:  logger.Ptr(evt.TicketID),
			EventType: logger.Ptr(string(evt.Type)),
		})
		if err := d.Events.Publish(evtCtx, evt); err != nil {
			slog.WarnContext(evtCtx, "failed to publish ticket event", "error", err)
		}
	}
}

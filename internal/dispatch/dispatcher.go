// Package dispatch routes decoded marketplace events to the reconcilers.
package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bluechipScope/internal/model"
	"bluechipScope/internal/reconcile"
)

// CounterStore persists the latest-block counter.
type CounterStore interface {
	SaveCounter(ctx context.Context, counter model.Counter) error
}

// Dispatcher applies one event at a time. It is not safe for concurrent use.
type Dispatcher struct {
	counters   CounterStore
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func New(counters CounterStore, reconciler *reconcile.Reconciler, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{counters: counters, reconciler: reconciler, logger: logger}
}

// Handle records the event's block in the LatestBlock counter and then runs
// the reconciliation sequence for its kind.
func (d *Dispatcher) Handle(ctx context.Context, event model.Event) error {
	if event.ListingID == nil {
		return fmt.Errorf("%s event at block %d has no listing id", event.Kind, event.BlockNumber)
	}

	counter := model.Counter{ID: model.LatestBlockCounter, Value: event.BlockNumber}
	if err := d.counters.SaveCounter(ctx, counter); err != nil {
		return fmt.Errorf("update latest block: %w", err)
	}

	var err error
	switch event.Kind {
	case model.EventListed:
		_, err = d.reconciler.Listing(ctx, event.Contract, event.ListingID, event.Account, event.Timestamp)
	case model.EventAcquired, model.EventRelisted:
		err = d.refreshListing(ctx, event)
	case model.EventJoin, model.EventLeave:
		err = d.syncBuyer(ctx, event)
	case model.EventPayout:
		_, err = d.reconciler.Listing(ctx, event.Contract, event.ListingID, zeroAddress, event.Timestamp)
	case model.EventClaim:
		if _, err = d.reconciler.Listing(ctx, event.Contract, event.ListingID, zeroAddress, event.Timestamp); err == nil {
			_, _, err = d.reconciler.Position(ctx, event.Contract, event.ListingID, event.Account)
		}
	default:
		return fmt.Errorf("unsupported event kind %q", event.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s listing %s: %w", event.Kind, event.ListingID, err)
	}

	d.logger.Debug("event applied",
		zap.String("kind", string(event.Kind)),
		zap.String("listing", event.ListingID.String()),
		zap.Uint64("block", event.BlockNumber),
		zap.Uint64("log_index", event.LogIndex),
	)
	return nil
}

package dispatch

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bluechipScope/internal/model"
	"bluechipScope/internal/reconcile"
)

var zeroAddress common.Address

// refreshListing handles Acquired and Relisted.
func (d *Dispatcher) refreshListing(ctx context.Context, event model.Event) error {
	if _, err := d.reconciler.Listing(ctx, event.Contract, event.ListingID, zeroAddress, event.Timestamp); err != nil {
		return err
	}
	return d.reconciler.RefreshBuyers(ctx, event.Contract, event.ListingID)
}

// syncBuyer handles Join and Leave.
func (d *Dispatcher) syncBuyer(ctx context.Context, event model.Event) error {
	listing, err := d.reconciler.Listing(ctx, event.Contract, event.ListingID, zeroAddress, event.Timestamp)
	if err != nil {
		return err
	}
	position, ok, err := d.reconciler.Position(ctx, event.Contract, event.ListingID, event.Account)
	if err != nil {
		return err
	}

	var current *model.UserListing
	if ok {
		current = &position
	}
	if reconcile.SyncMembership(&listing, current, event.Account) {
		if err := d.reconciler.SaveListing(ctx, listing); err != nil {
			return fmt.Errorf("save listing %s: %w", listing.ID, err)
		}
		d.logger.Debug("membership changed",
			zap.String("listing", listing.ID),
			zap.String("buyer", model.AddressID(event.Account)),
			zap.Int("buyers", listing.BuyersCount),
		)
	}
	return d.reconciler.RefreshBuyers(ctx, event.Contract, event.ListingID)
}

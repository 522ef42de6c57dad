package reconcile

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bluechipScope/internal/model"
)

// InsertBuyer adds buyer to the listing's buyer set.
func InsertBuyer(listing *model.Listing, buyer common.Address) bool {
	if !listing.Buyers.Insert(buyer) {
		return false
	}
	listing.BuyersCount = listing.Buyers.Len()
	return true
}

// RemoveBuyer drops buyer from the listing's buyer set.
func RemoveBuyer(listing *model.Listing, buyer common.Address) bool {
	if !listing.Buyers.Remove(buyer) {
		return false
	}
	listing.BuyersCount = listing.Buyers.Len()
	return true
}

// SyncMembership makes buyer a member exactly when position holds a non-zero
// amount. A nil position counts as zero. It reports whether the set changed.
func SyncMembership(listing *model.Listing, position *model.UserListing, buyer common.Address) bool {
	if position != nil && !position.Amount.IsZero() {
		return InsertBuyer(listing, buyer)
	}
	return RemoveBuyer(listing, buyer)
}

// RefreshBuyers re-reads the position of every tracked buyer of listing id and
// drops members whose position no longer holds anything.
func (r *Reconciler) RefreshBuyers(ctx context.Context, market common.Address, id *big.Int) error {
	listingID := id.String()
	listing, found, err := r.store.LoadListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("load listing %s: %w", listingID, err)
	}
	if !found || listing.Buyers.Len() == 0 {
		return nil
	}

	var (
		changed  bool
		visitErr error
	)
	listing.Buyers.Each(func(buyer common.Address) {
		if visitErr != nil {
			return
		}
		position, ok, err := r.Position(ctx, market, id, buyer)
		if err != nil {
			visitErr = err
			return
		}
		var current *model.UserListing
		if ok {
			current = &position
		}
		if SyncMembership(&listing, current, buyer) {
			changed = true
		}
	})
	if visitErr != nil {
		return visitErr
	}

	if !changed {
		return nil
	}
	if err := r.store.SaveListing(ctx, listing); err != nil {
		return fmt.Errorf("save listing %s: %w", listingID, err)
	}
	r.logger.Debug("buyers pruned", zap.String("listing", listingID), zap.Int("buyers", listing.BuyersCount))
	return nil
}

// SaveListing persists a listing whose membership was changed by the caller.
func (r *Reconciler) SaveListing(ctx context.Context, listing model.Listing) error {
	return r.store.SaveListing(ctx, listing)
}

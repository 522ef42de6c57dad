// Package reconcile merges authoritative contract reads into the persisted
// listing and position records.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bluechipScope/internal/contract"
	"bluechipScope/internal/model"
	"bluechipScope/internal/registry"
	"bluechipScope/internal/storage"
)

var (
	ErrUnknownStatus    = errors.New("unknown listing status")
	ErrZeroReservePrice = errors.New("zero reserve price")
	ErrListingNotFound  = errors.New("listing not found")
)

// IsIntegrityError reports whether err is a data-integrity violation that
// replaying cannot fix.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrUnknownStatus) ||
		errors.Is(err, ErrZeroReservePrice) ||
		errors.Is(err, ErrListingNotFound)
}

// Reconciler re-reads listing and position state from the marketplace and
// writes the result to the store.
type Reconciler struct {
	store    storage.Store
	reader   contract.ListingReader
	registry *registry.Registry
	logger   *zap.Logger
}

func New(store storage.Store, reader contract.ListingReader, reg *registry.Registry, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, reader: reader, registry: reg, logger: logger}
}

// readListing fetches the listing tuple and rejects nonexistent ids and
// unknown state codes before anything is written.
func (r *Reconciler) readListing(ctx context.Context, market common.Address, id *big.Int) (contract.ListingState, model.ListingStatus, error) {
	state, err := r.reader.Listing(ctx, market, id)
	if err != nil {
		return contract.ListingState{}, "", fmt.Errorf("read listing %s: %w", id, err)
	}
	if !state.Exists() {
		return contract.ListingState{}, "", fmt.Errorf("listing %s: %w", id, ErrListingNotFound)
	}
	status, err := model.ListingStatusFromCode(state.State)
	if err != nil {
		return contract.ListingState{}, "", fmt.Errorf("listing %s: %w: %v", id, ErrUnknownStatus, err)
	}
	return state, status, nil
}

// Package registry lazily creates the reference records (currencies,
// collections and NFTs) that listings point at.
package registry

import (
	"context"

	"go.uber.org/zap"

	"bluechipScope/internal/contract"
	"bluechipScope/internal/model"
)

// Store is the subset of storage.Store the registries need.
type Store interface {
	LoadCurrency(ctx context.Context, id string) (model.Currency, bool, error)
	SaveCurrency(ctx context.Context, currency model.Currency) error
	LoadCollection(ctx context.Context, id string) (model.Collection, bool, error)
	SaveCollection(ctx context.Context, collection model.Collection) error
	LoadNft(ctx context.Context, id string) (model.Nft, bool, error)
	SaveNft(ctx context.Context, nft model.Nft) error
}

// Registry loads or creates Currency, Collection and Nft records. Metadata
// is read from the chain only on the create path, except tokenURI which is
// refreshed on every Nft call.
type Registry struct {
	store  Store
	meta   contract.MetadataReader
	logger *zap.Logger
}

func New(store Store, meta contract.MetadataReader, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, meta: meta, logger: logger}
}

func (r *Registry) metadataFailed(call string, id string, err error) {
	r.logger.Debug("metadata call failed", zap.String("call", call), zap.String("address", id), zap.Error(err))
}

package storage

import (
	"context"

	"bluechipScope/internal/model"
)

// LogSink receives batches of raw chain logs.
type LogSink interface {
	PutLogBatch(ctx context.Context, logs []model.LogRecord) error
}

// Store persists the marketplace projection. Loads report found=false with
// a nil error when the record does not exist.
type Store interface {
	LoadCurrency(ctx context.Context, id string) (model.Currency, bool, error)
	SaveCurrency(ctx context.Context, currency model.Currency) error

	LoadCollection(ctx context.Context, id string) (model.Collection, bool, error)
	SaveCollection(ctx context.Context, collection model.Collection) error

	LoadNft(ctx context.Context, id string) (model.Nft, bool, error)
	SaveNft(ctx context.Context, nft model.Nft) error

	LoadListing(ctx context.Context, id string) (model.Listing, bool, error)
	SaveListing(ctx context.Context, listing model.Listing) error

	LoadUserListing(ctx context.Context, id string) (model.UserListing, bool, error)
	SaveUserListing(ctx context.Context, userListing model.UserListing) error
	DeleteUserListing(ctx context.Context, id string) error

	LoadCounter(ctx context.Context, id string) (model.Counter, bool, error)
	SaveCounter(ctx context.Context, counter model.Counter) error
}

// MultiSink fans a batch out to every sink in order.
type MultiSink []LogSink

// PutLogBatch stops at the first failing sink.
func (m MultiSink) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PutLogBatch(ctx, logs); err != nil {
			return err
		}
	}
	return nil
}

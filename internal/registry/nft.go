package registry

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bluechipScope/internal/model"
)

// Collection returns the collection record for address, creating it on first use.
func (r *Registry) Collection(ctx context.Context, address common.Address) (model.Collection, error) {
	id := model.AddressID(address)
	collection, found, err := r.store.LoadCollection(ctx, id)
	if err != nil {
		return model.Collection{}, fmt.Errorf("load collection %s: %w", id, err)
	}
	if found {
		return collection, nil
	}

	collection = model.Collection{ID: id}
	if name, err := r.meta.Name(ctx, address); err == nil {
		collection.Name = &name
	} else {
		r.metadataFailed("name", id, err)
	}
	if symbol, err := r.meta.Symbol(ctx, address); err == nil {
		collection.Symbol = &symbol
	} else {
		r.metadataFailed("symbol", id, err)
	}

	if err := r.store.SaveCollection(ctx, collection); err != nil {
		return model.Collection{}, fmt.Errorf("save collection %s: %w", id, err)
	}
	r.logger.Debug("collection registered", zap.String("id", id))
	return collection, nil
}

// Nft returns the record for tokenID of collection. The token URI is re-read
// on every call; a failed read keeps whatever was stored before.
func (r *Registry) Nft(ctx context.Context, collection common.Address, tokenID *big.Int) (model.Nft, error) {
	if tokenID == nil {
		return model.Nft{}, fmt.Errorf("nft of %s: token id is nil", collection.Hex())
	}

	id := model.NftID(model.AddressID(collection), tokenID.String())
	nft, found, err := r.store.LoadNft(ctx, id)
	if err != nil {
		return model.Nft{}, fmt.Errorf("load nft %s: %w", id, err)
	}
	if !found {
		owner, err := r.Collection(ctx, collection)
		if err != nil {
			return model.Nft{}, err
		}
		nft = model.Nft{ID: id, Collection: owner.ID, TokenID: tokenID.String()}
	}

	if uri, err := r.meta.TokenURI(ctx, collection, tokenID); err == nil {
		nft.TokenURI = &uri
	} else {
		r.metadataFailed("tokenURI", id, err)
	}

	if err := r.store.SaveNft(ctx, nft); err != nil {
		return model.Nft{}, fmt.Errorf("save nft %s: %w", id, err)
	}
	return nft, nil
}

package reconcile

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bluechipScope/internal/model"
	"bluechipScope/internal/units"
)

// Listing reconciles listing id of market. creator and timestamp only seed a
// record that does not exist yet.
func (r *Reconciler) Listing(ctx context.Context, market common.Address, id *big.Int, creator common.Address, timestamp uint64) (model.Listing, error) {
	state, status, err := r.readListing(ctx, market, id)
	if err != nil {
		return model.Listing{}, err
	}
	creatorFee, err := r.reader.CreatorFee(ctx, market, id)
	if err != nil {
		return model.Listing{}, fmt.Errorf("read creator fee %s: %w", id, err)
	}
	payout, err := r.reader.SellerPayout(ctx, market, id)
	if err != nil {
		return model.Listing{}, fmt.Errorf("read seller payout %s: %w", id, err)
	}

	currency, err := r.registry.Currency(ctx, state.PaymentToken)
	if err != nil {
		return model.Listing{}, err
	}
	nft, err := r.registry.Nft(ctx, state.Collection, state.TokenID)
	if err != nil {
		return model.Listing{}, err
	}

	listingID := id.String()
	listing, found, err := r.store.LoadListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("load listing %s: %w", listingID, err)
	}
	if !found {
		listing = model.Listing{
			ID:              listingID,
			Timestamp:       timestamp,
			Creator:         model.AddressID(creator),
			Target:          nft.ID,
			Listed:          state.Listed,
			PaymentToken:    currency.ID,
			Fee:             units.Scale(state.Fee, units.FeeDecimals),
			PriceMultiplier: units.Scale(state.PriceMultiplier, units.PriceMultiplierDecimals),
			Extra:           hexutil.Encode(state.Extra),
		}
	}

	decimals := currency.Decimals
	listing.ReservePrice = units.Scale(state.ReservePrice, decimals)
	listing.CreatorFee = units.Scale(creatorFee, units.FeeDecimals)
	listing.Amount = units.Scale(state.Amount, decimals)
	if state.Fractionalized() {
		fractions := model.AddressID(state.Fractions)
		listing.Fractions = &fractions
		listing.FractionsCount = decimal.NewNullDecimal(units.Scale(state.FractionsCount, units.FractionsDecimals))
	}
	listing.Status = status
	listing.Seller = model.AddressID(state.Seller)
	listing.SellerNetAmount = units.Scale(payout.SellerNet, decimals)
	listing.SellerFeeAmount = units.Scale(payout.SellerFee, decimals)
	listing.CreatorFeeAmount = units.Scale(payout.CreatorFee, decimals)
	listing.BuyersCount = listing.Buyers.Len()

	if err := r.store.SaveListing(ctx, listing); err != nil {
		return model.Listing{}, fmt.Errorf("save listing %s: %w", listingID, err)
	}
	r.logger.Debug("listing reconciled",
		zap.String("listing", listingID),
		zap.String("status", string(status)),
		zap.Bool("created", !found),
	)
	return listing, nil
}

package reconcile

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bluechipScope/internal/model"
	"bluechipScope/internal/units"
)

// Position reconciles buyer's position in listing id. It reports false when
// the position was deleted or never existed: a zero balance before the
// listing is acquired leaves no record.
func (r *Reconciler) Position(ctx context.Context, market common.Address, id *big.Int, buyer common.Address) (model.UserListing, bool, error) {
	state, _, err := r.readListing(ctx, market, id)
	if err != nil {
		return model.UserListing{}, false, err
	}
	currency, err := r.registry.Currency(ctx, state.PaymentToken)
	if err != nil {
		return model.UserListing{}, false, err
	}
	rawBalance, err := r.reader.BuyerBalance(ctx, market, id, buyer)
	if err != nil {
		return model.UserListing{}, false, fmt.Errorf("read balance %s of %s: %w", id, buyer.Hex(), err)
	}

	listingID := id.String()
	positionID := model.UserListingID(model.AddressID(buyer), listingID)
	balance := units.Scale(rawBalance, currency.Decimals)

	if balance.IsZero() && state.State < 1 {
		_, found, err := r.store.LoadUserListing(ctx, positionID)
		if err != nil {
			return model.UserListing{}, false, fmt.Errorf("load position %s: %w", positionID, err)
		}
		if found {
			if err := r.store.DeleteUserListing(ctx, positionID); err != nil {
				return model.UserListing{}, false, fmt.Errorf("delete position %s: %w", positionID, err)
			}
			r.logger.Debug("position deleted", zap.String("position", positionID))
		}
		return model.UserListing{}, false, nil
	}

	reservePrice := units.Scale(state.ReservePrice, currency.Decimals)
	if reservePrice.IsZero() {
		return model.UserListing{}, false, fmt.Errorf("position %s: %w", positionID, ErrZeroReservePrice)
	}

	position, found, err := r.store.LoadUserListing(ctx, positionID)
	if err != nil {
		return model.UserListing{}, false, fmt.Errorf("load position %s: %w", positionID, err)
	}
	if !found {
		position = model.UserListing{
			ID:      positionID,
			Buyer:   model.AddressID(buyer),
			Listed:  state.Listed,
			Listing: listingID,
		}
	}
	position.Ownership = balance.Div(reservePrice)
	position.Amount = balance
	if state.Fractionalized() {
		count, err := r.reader.BuyerFractionsCount(ctx, market, id, buyer)
		if err != nil {
			return model.UserListing{}, false, fmt.Errorf("read fractions %s of %s: %w", id, buyer.Hex(), err)
		}
		position.FractionsCount = decimal.NewNullDecimal(units.Scale(count, units.FractionsDecimals))
	}

	if err := r.store.SaveUserListing(ctx, position); err != nil {
		return model.UserListing{}, false, fmt.Errorf("save position %s: %w", positionID, err)
	}
	return position, true, nil
}

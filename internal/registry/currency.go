package registry

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bluechipScope/internal/model"
	"bluechipScope/internal/units"
)

// Currency returns the currency record for address, creating it on first use.
// The zero address is the native sentinel and is never called.
func (r *Registry) Currency(ctx context.Context, address common.Address) (model.Currency, error) {
	id := model.AddressID(address)
	currency, found, err := r.store.LoadCurrency(ctx, id)
	if err != nil {
		return model.Currency{}, fmt.Errorf("load currency %s: %w", id, err)
	}
	if found {
		return currency, nil
	}

	currency = model.Currency{ID: id, Decimals: units.DefaultCurrencyDecimals}
	if address != (common.Address{}) {
		if name, err := r.meta.Name(ctx, address); err == nil {
			currency.Name = &name
		} else {
			r.metadataFailed("name", id, err)
		}
		if symbol, err := r.meta.Symbol(ctx, address); err == nil {
			currency.Symbol = &symbol
		} else {
			r.metadataFailed("symbol", id, err)
		}
		if decimals, err := r.meta.Decimals(ctx, address); err == nil {
			currency.Decimals = int32(decimals)
		} else {
			r.metadataFailed("decimals", id, err)
		}
	}

	if err := r.store.SaveCurrency(ctx, currency); err != nil {
		return model.Currency{}, fmt.Errorf("save currency %s: %w", id, err)
	}
	r.logger.Debug("currency registered", zap.String("id", id), zap.Int32("decimals", currency.Decimals))
	return currency, nil
}

package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ListingState is the raw tuple returned by listings(id).
type ListingState struct {
	State           uint8
	Seller          common.Address
	Collection      common.Address
	TokenID         *big.Int
	Listed          bool
	PaymentToken    common.Address
	ReservePrice    *big.Int
	PriceMultiplier *big.Int
	Extra           []byte
	Amount          *big.Int
	FractionsCount  *big.Int
	Fractions       common.Address
	Fee             *big.Int
}

// Exists reports whether the tuple describes a listing that was ever created.
// Unset storage slots read back as an all-zero tuple.
func (s ListingState) Exists() bool {
	return s.Seller != (common.Address{}) || s.Collection != (common.Address{})
}

// Fractionalized reports whether a fractions token has been issued.
func (s ListingState) Fractionalized() bool {
	return s.Fractions != (common.Address{})
}

// Payout is the seller payout breakdown returned by sellerPayout(id).
type Payout struct {
	SellerNet  *big.Int
	SellerFee  *big.Int
	CreatorFee *big.Int
}

// ListingReader reads authoritative listing state from the marketplace.
type ListingReader interface {
	Listing(ctx context.Context, market common.Address, id *big.Int) (ListingState, error)
	CreatorFee(ctx context.Context, market common.Address, id *big.Int) (*big.Int, error)
	SellerPayout(ctx context.Context, market common.Address, id *big.Int) (Payout, error)
	BuyerBalance(ctx context.Context, market common.Address, id *big.Int, buyer common.Address) (*big.Int, error)
	BuyerFractionsCount(ctx context.Context, market common.Address, id *big.Int, buyer common.Address) (*big.Int, error)
}

// MetadataReader reads best-effort token metadata. Every call may fail
// independently.
type MetadataReader interface {
	Name(ctx context.Context, token common.Address) (string, error)
	Symbol(ctx context.Context, token common.Address) (string, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	TokenURI(ctx context.Context, collection common.Address, tokenID *big.Int) (string, error)
}

// CallClient performs eth_call.
type CallClient interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller implements ListingReader and MetadataReader over eth_call against
// the latest block.
type Caller struct {
	client        CallClient
	investmentABI abi.ABI
	tokenABI      abi.ABI
	tokenABIBytes abi.ABI
}

// NewCaller builds a Caller on top of an RPC client.
func NewCaller(client CallClient) (*Caller, error) {
	if client == nil {
		return nil, fmt.Errorf("call client is nil")
	}
	investment, err := InvestmentABI()
	if err != nil {
		return nil, fmt.Errorf("parse investment abi: %w", err)
	}
	token, err := TokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	tokenBytes, err := TokenABIBytes32()
	if err != nil {
		return nil, fmt.Errorf("parse token bytes32 abi: %w", err)
	}
	return &Caller{
		client:        client,
		investmentABI: investment,
		tokenABI:      token,
		tokenABIBytes: tokenBytes,
	}, nil
}

// Listing reads listings(id).
func (c *Caller) Listing(ctx context.Context, market common.Address, id *big.Int) (ListingState, error) {
	values, err := c.call(ctx, market, c.investmentABI, "listings", id)
	if err != nil {
		return ListingState{}, err
	}
	if len(values) != 13 {
		return ListingState{}, fmt.Errorf("listings: unexpected values: %d", len(values))
	}

	var state ListingState
	var convErr error
	take := func(err error) {
		if convErr == nil && err != nil {
			convErr = err
		}
	}

	code, err := asUint8(values[0])
	take(err)
	state.State = code
	state.Seller, err = asAddress(values[1])
	take(err)
	state.Collection, err = asAddress(values[2])
	take(err)
	state.TokenID, err = asBigInt(values[3])
	take(err)
	listed, ok := values[4].(bool)
	if !ok {
		take(fmt.Errorf("unsupported bool type %T", values[4]))
	}
	state.Listed = listed
	state.PaymentToken, err = asAddress(values[5])
	take(err)
	state.ReservePrice, err = asBigInt(values[6])
	take(err)
	state.PriceMultiplier, err = asBigInt(values[7])
	take(err)
	state.Extra, err = asBytes(values[8])
	take(err)
	state.Amount, err = asBigInt(values[9])
	take(err)
	state.FractionsCount, err = asBigInt(values[10])
	take(err)
	state.Fractions, err = asAddress(values[11])
	take(err)
	state.Fee, err = asBigInt(values[12])
	take(err)

	if convErr != nil {
		return ListingState{}, fmt.Errorf("listings: %w", convErr)
	}
	return state, nil
}

// CreatorFee reads the fee half of creators(id).
func (c *Caller) CreatorFee(ctx context.Context, market common.Address, id *big.Int) (*big.Int, error) {
	values, err := c.call(ctx, market, c.investmentABI, "creators", id)
	if err != nil {
		return nil, err
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("creators: unexpected values: %d", len(values))
	}
	fee, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("creators: %w", err)
	}
	return fee, nil
}

// SellerPayout reads sellerPayout(id).
func (c *Caller) SellerPayout(ctx context.Context, market common.Address, id *big.Int) (Payout, error) {
	values, err := c.call(ctx, market, c.investmentABI, "sellerPayout", id)
	if err != nil {
		return Payout{}, err
	}
	if len(values) != 3 {
		return Payout{}, fmt.Errorf("sellerPayout: unexpected values: %d", len(values))
	}

	var payout Payout
	if payout.SellerNet, err = asBigInt(values[0]); err != nil {
		return Payout{}, fmt.Errorf("sellerPayout: %w", err)
	}
	if payout.SellerFee, err = asBigInt(values[1]); err != nil {
		return Payout{}, fmt.Errorf("sellerPayout: %w", err)
	}
	if payout.CreatorFee, err = asBigInt(values[2]); err != nil {
		return Payout{}, fmt.Errorf("sellerPayout: %w", err)
	}
	return payout, nil
}

// BuyerBalance reads buyers(id, buyer).
func (c *Caller) BuyerBalance(ctx context.Context, market common.Address, id *big.Int, buyer common.Address) (*big.Int, error) {
	return c.callUint(ctx, market, c.investmentABI, "buyers", id, buyer)
}

// BuyerFractionsCount reads buyerFractionsCount(id, buyer).
func (c *Caller) BuyerFractionsCount(ctx context.Context, market common.Address, id *big.Int, buyer common.Address) (*big.Int, error) {
	return c.callUint(ctx, market, c.investmentABI, "buyerFractionsCount", id, buyer)
}

// Name reads name(), falling back to the bytes32 variant.
func (c *Caller) Name(ctx context.Context, token common.Address) (string, error) {
	return c.callText(ctx, token, "name")
}

// Symbol reads symbol(), falling back to the bytes32 variant.
func (c *Caller) Symbol(ctx context.Context, token common.Address) (string, error) {
	return c.callText(ctx, token, "symbol")
}

// Decimals reads decimals().
func (c *Caller) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	values, err := c.call(ctx, token, c.tokenABI, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

// TokenURI reads tokenURI(tokenID).
func (c *Caller) TokenURI(ctx context.Context, collection common.Address, tokenID *big.Int) (string, error) {
	values, err := c.call(ctx, collection, c.tokenABI, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	uri, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("tokenURI: unexpected type %T", values[0])
	}
	return uri, nil
}

func (c *Caller) callText(ctx context.Context, token common.Address, method string) (string, error) {
	values, err := c.call(ctx, token, c.tokenABI, method)
	if err == nil {
		if text, ok := values[0].(string); ok {
			return text, nil
		}
	}
	values, fallbackErr := c.call(ctx, token, c.tokenABIBytes, method)
	if fallbackErr != nil {
		if err == nil {
			err = fallbackErr
		}
		return "", err
	}
	text, ok := bytes32ToString(values[0])
	if !ok {
		return "", fmt.Errorf("%s: unexpected type %T", method, values[0])
	}
	return text, nil
}

func (c *Caller) callUint(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	values, err := c.call(ctx, to, parsed, method, args...)
	if err != nil {
		return nil, err
	}
	value, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return value, nil
}

func (c *Caller) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return values, nil
}

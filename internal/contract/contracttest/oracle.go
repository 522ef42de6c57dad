// Package contracttest provides an in-memory marketplace and token oracle.
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"bluechipScope/internal/contract"
)

// ErrReverted is returned for metadata that was not configured.
var ErrReverted = errors.New("execution reverted")

// Token holds metadata for one token contract. Nil fields revert.
type Token struct {
	Name      *string
	Symbol    *string
	Decimals  *uint8
	TokenURIs map[string]string
}

type positionKey struct {
	id    string
	buyer common.Address
}

// Oracle is a mutable fake of the marketplace and its tokens.
type Oracle struct {
	mu            sync.Mutex
	listings      map[string]contract.ListingState
	creatorFees   map[string]*big.Int
	payouts       map[string]contract.Payout
	balances      map[positionKey]*big.Int
	fractions     map[positionKey]*big.Int
	tokens        map[common.Address]Token
	metadataCalls map[common.Address]int
}

var (
	_ contract.ListingReader  = (*Oracle)(nil)
	_ contract.MetadataReader = (*Oracle)(nil)
)

// New returns an empty oracle.
func New() *Oracle {
	return &Oracle{
		listings:      make(map[string]contract.ListingState),
		creatorFees:   make(map[string]*big.Int),
		payouts:       make(map[string]contract.Payout),
		balances:      make(map[positionKey]*big.Int),
		fractions:     make(map[positionKey]*big.Int),
		tokens:        make(map[common.Address]Token),
		metadataCalls: make(map[common.Address]int),
	}
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// U8 returns a pointer to v.
func U8(v uint8) *uint8 { return &v }

// SetListing stores the listing tuple for id.
func (o *Oracle) SetListing(id int64, state contract.ListingState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listings[big.NewInt(id).String()] = state
}

// UpdateListing mutates the stored tuple for id.
func (o *Oracle) UpdateListing(id int64, update func(*contract.ListingState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := big.NewInt(id).String()
	state := o.listings[key]
	update(&state)
	o.listings[key] = state
}

// SetCreatorFee stores the raw creator fee for id.
func (o *Oracle) SetCreatorFee(id int64, fee *big.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.creatorFees[big.NewInt(id).String()] = fee
}

// SetPayout stores the payout breakdown for id.
func (o *Oracle) SetPayout(id int64, payout contract.Payout) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.payouts[big.NewInt(id).String()] = payout
}

// SetBalance stores the raw buyer balance.
func (o *Oracle) SetBalance(id int64, buyer common.Address, balance *big.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.balances[positionKey{big.NewInt(id).String(), buyer}] = balance
}

// SetFractions stores the raw buyer fractions count.
func (o *Oracle) SetFractions(id int64, buyer common.Address, count *big.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fractions[positionKey{big.NewInt(id).String(), buyer}] = count
}

// SetToken stores metadata for a token contract.
func (o *Oracle) SetToken(address common.Address, token Token) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens[address] = token
}

// MetadataCalls returns how many name/symbol/decimals calls hit address.
func (o *Oracle) MetadataCalls(address common.Address) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.metadataCalls[address]
}

func (o *Oracle) Listing(_ context.Context, _ common.Address, id *big.Int) (contract.ListingState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.listings[id.String()], nil
}

func (o *Oracle) CreatorFee(_ context.Context, _ common.Address, id *big.Int) (*big.Int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return orZero(o.creatorFees[id.String()]), nil
}

func (o *Oracle) SellerPayout(_ context.Context, _ common.Address, id *big.Int) (contract.Payout, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	payout := o.payouts[id.String()]
	return contract.Payout{
		SellerNet:  orZero(payout.SellerNet),
		SellerFee:  orZero(payout.SellerFee),
		CreatorFee: orZero(payout.CreatorFee),
	}, nil
}

func (o *Oracle) BuyerBalance(_ context.Context, _ common.Address, id *big.Int, buyer common.Address) (*big.Int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return orZero(o.balances[positionKey{id.String(), buyer}]), nil
}

func (o *Oracle) BuyerFractionsCount(_ context.Context, _ common.Address, id *big.Int, buyer common.Address) (*big.Int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return orZero(o.fractions[positionKey{id.String(), buyer}]), nil
}

func (o *Oracle) Name(_ context.Context, token common.Address) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metadataCalls[token]++
	if name := o.tokens[token].Name; name != nil {
		return *name, nil
	}
	return "", ErrReverted
}

func (o *Oracle) Symbol(_ context.Context, token common.Address) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metadataCalls[token]++
	if symbol := o.tokens[token].Symbol; symbol != nil {
		return *symbol, nil
	}
	return "", ErrReverted
}

func (o *Oracle) Decimals(_ context.Context, token common.Address) (uint8, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metadataCalls[token]++
	if decimals := o.tokens[token].Decimals; decimals != nil {
		return *decimals, nil
	}
	return 0, ErrReverted
}

func (o *Oracle) TokenURI(_ context.Context, collection common.Address, tokenID *big.Int) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if uri, ok := o.tokens[collection].TokenURIs[tokenID.String()]; ok {
		return uri, nil
	}
	return "", fmt.Errorf("tokenURI %s: %w", tokenID, ErrReverted)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressID is the record key of an address: lowercase 0x-prefixed hex.
func AddressID(address common.Address) string {
	return strings.ToLower(address.Hex())
}

// Currency is an ERC20 payment token (or the zero-address native sentinel).
// Name and Symbol stay nil when the on-chain call failed.
type Currency struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Symbol   *string `json:"symbol,omitempty"`
	Decimals int32   `json:"decimals"`
}

// Collection is an ERC721 contract.
type Collection struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Symbol *string `json:"symbol,omitempty"`
}

// Nft is a single token of a collection, keyed by "<collection>#<tokenId>".
type Nft struct {
	ID         string  `json:"id"`
	Collection string  `json:"collection"`
	TokenID    string  `json:"token_id"`
	TokenURI   *string `json:"token_uri,omitempty"`
}

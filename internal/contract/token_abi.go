package contract

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// name and symbol share selectors between ERC20 and ERC721, so one ABI
// serves currency and collection metadata.
const tokenABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "tokenId", "type": "uint256"}], "name": "tokenURI", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const tokenABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	tokenABIString      abi.ABI
	tokenABIStringOnce  sync.Once
	tokenABIStringErr   error
	tokenABIBytes32     abi.ABI
	tokenABIBytes32Once sync.Once
	tokenABIBytes32Err  error
)

// TokenABI returns the ERC20/ERC721 metadata ABI with string return types.
func TokenABI() (abi.ABI, error) {
	tokenABIStringOnce.Do(func() {
		tokenABIString, tokenABIStringErr = abi.JSON(strings.NewReader(tokenABIStringJSON))
	})
	return tokenABIString, tokenABIStringErr
}

// TokenABIBytes32 returns the legacy metadata ABI where name and symbol are bytes32.
func TokenABIBytes32() (abi.ABI, error) {
	tokenABIBytes32Once.Do(func() {
		tokenABIBytes32, tokenABIBytes32Err = abi.JSON(strings.NewReader(tokenABIBytes32JSON))
	})
	return tokenABIBytes32, tokenABIBytes32Err
}

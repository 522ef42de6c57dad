package contract

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const investmentABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "_listingId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "_creator", "type": "address"}
    ],
    "name": "Listed",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "_listingId", "type": "uint256"}
    ],
    "name": "Acquired",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "_listingId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "_buyer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "_amount", "type": "uint256"}
    ],
    "name": "Join",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "_listingId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "_buyer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "_amount", "type": "uint256"}
    ],
    "name": "Leave",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "_listingId", "type": "uint256"}
    ],
    "name": "Relisted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "_listingId", "type": "uint256"}
    ],
    "name": "Payout",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "_listingId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "_buyer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "_amount", "type": "uint256"}
    ],
    "name": "Claim",
    "type": "event"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "name": "listings",
    "outputs": [
      {"internalType": "uint8", "name": "state", "type": "uint8"},
      {"internalType": "address", "name": "seller", "type": "address"},
      {"internalType": "address", "name": "collection", "type": "address"},
      {"internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"internalType": "bool", "name": "listed", "type": "bool"},
      {"internalType": "address", "name": "paymentToken", "type": "address"},
      {"internalType": "uint256", "name": "reservePrice", "type": "uint256"},
      {"internalType": "uint256", "name": "priceMultiplier", "type": "uint256"},
      {"internalType": "bytes", "name": "extra", "type": "bytes"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"},
      {"internalType": "uint256", "name": "fractionsCount", "type": "uint256"},
      {"internalType": "address", "name": "fractions", "type": "address"},
      {"internalType": "uint256", "name": "fee", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "name": "creators",
    "outputs": [
      {"internalType": "address", "name": "creator", "type": "address"},
      {"internalType": "uint256", "name": "fee", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_listingId", "type": "uint256"}],
    "name": "sellerPayout",
    "outputs": [
      {"internalType": "uint256", "name": "_netAmount", "type": "uint256"},
      {"internalType": "uint256", "name": "_feeAmount", "type": "uint256"},
      {"internalType": "uint256", "name": "_creatorFeeAmount", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "", "type": "uint256"},
      {"internalType": "address", "name": "", "type": "address"}
    ],
    "name": "buyers",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_listingId", "type": "uint256"},
      {"internalType": "address", "name": "_buyer", "type": "address"}
    ],
    "name": "buyerFractionsCount",
    "outputs": [{"internalType": "uint256", "name": "_fractionsCount", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	investmentABI     abi.ABI
	investmentABIOnce sync.Once
	investmentABIErr  error
)

// InvestmentABI returns the parsed marketplace contract ABI.
func InvestmentABI() (abi.ABI, error) {
	investmentABIOnce.Do(func() {
		investmentABI, investmentABIErr = abi.JSON(strings.NewReader(investmentABIJSON))
	})
	return investmentABI, investmentABIErr
}

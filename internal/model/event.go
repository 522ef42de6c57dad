package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies a marketplace contract event.
type EventKind string

const (
	EventListed   EventKind = "Listed"
	EventAcquired EventKind = "Acquired"
	EventJoin     EventKind = "Join"
	EventLeave    EventKind = "Leave"
	EventRelisted EventKind = "Relisted"
	EventPayout   EventKind = "Payout"
	EventClaim    EventKind = "Claim"
)

// Event is a decoded marketplace event. Account is the creator for Listed and
// the buyer for Join, Leave and Claim; it is the zero address otherwise.
type Event struct {
	Kind        EventKind      `json:"kind"`
	Contract    common.Address `json:"contract"`
	ListingID   *big.Int       `json:"listing_id"`
	Account     common.Address `json:"account"`
	BlockNumber uint64         `json:"block_number"`
	Timestamp   uint64         `json:"timestamp"`
	TxHash      string         `json:"tx_hash"`
	LogIndex    uint64         `json:"log_index"`
}

package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"bluechipScope/internal/model"
)

// EventDecoder decodes marketplace contract logs into events.
type EventDecoder struct {
	events map[common.Hash]abi.Event
	kinds  map[common.Hash]model.EventKind
	topics []common.Hash
}

var eventKinds = []model.EventKind{
	model.EventListed,
	model.EventAcquired,
	model.EventJoin,
	model.EventLeave,
	model.EventRelisted,
	model.EventPayout,
	model.EventClaim,
}

// NewEventDecoder builds a decoder for every marketplace event.
func NewEventDecoder() (*EventDecoder, error) {
	parsed, err := InvestmentABI()
	if err != nil {
		return nil, err
	}

	d := &EventDecoder{
		events: make(map[common.Hash]abi.Event, len(eventKinds)),
		kinds:  make(map[common.Hash]model.EventKind, len(eventKinds)),
	}
	for _, kind := range eventKinds {
		event, ok := parsed.Events[string(kind)]
		if !ok {
			return nil, fmt.Errorf("abi is missing event %s", kind)
		}
		d.events[event.ID] = event
		d.kinds[event.ID] = kind
		d.topics = append(d.topics, event.ID)
	}
	return d, nil
}

// Topics returns the topic0 hashes of every known event.
func (d *EventDecoder) Topics() []common.Hash {
	topics := make([]common.Hash, len(d.topics))
	copy(topics, d.topics)
	return topics
}

// CanDecode checks whether topic0 belongs to a marketplace event.
func (d *EventDecoder) CanDecode(log types.Log) bool {
	if len(log.Topics) == 0 {
		return false
	}
	_, ok := d.kinds[log.Topics[0]]
	return ok
}

// Decode extracts the listing id and, where present, the creator or buyer.
// Payload amounts are ignored; handlers re-read contract state instead.
func (d *EventDecoder) Decode(log types.Log, timestamp uint64) (model.Event, error) {
	if len(log.Topics) == 0 {
		return model.Event{}, fmt.Errorf("missing topics")
	}
	event, ok := d.events[log.Topics[0]]
	if !ok {
		return model.Event{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}

	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return model.Event{}, fmt.Errorf("%s: expected %d topics, got %d", event.Name, len(indexed)+1, len(log.Topics))
	}

	fields := make(map[string]interface{}, len(indexed))
	if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
		return model.Event{}, fmt.Errorf("%s: parse topics: %w", event.Name, err)
	}

	listingID, ok := fields["_listingId"].(*big.Int)
	if !ok || listingID == nil {
		return model.Event{}, fmt.Errorf("%s: missing listing id", event.Name)
	}

	var account common.Address
	for _, key := range []string{"_creator", "_buyer"} {
		if value, ok := fields[key]; ok {
			addr, err := asAddress(value)
			if err != nil {
				return model.Event{}, fmt.Errorf("%s: %s: %w", event.Name, key, err)
			}
			account = addr
		}
	}

	return model.Event{
		Kind:        d.kinds[event.ID],
		Contract:    log.Address,
		ListingID:   listingID,
		Account:     account,
		BlockNumber: log.BlockNumber,
		Timestamp:   timestamp,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

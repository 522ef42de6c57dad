package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// LogRecord is the normalized representation of a chain log for archiving.
type LogRecord struct {
	ChainID     uint64   `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
	BlockHash   string   `json:"block_hash"`
	TxHash      string   `json:"tx_hash"`
	TxIndex     uint64   `json:"tx_index"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Removed     bool     `json:"removed"`
	Timestamp   uint64   `json:"timestamp"`
	IngestedAt  string   `json:"ingested_at"`
}

// Topic0 returns the event signature topic, or "" when there is none.
func (lr LogRecord) Topic0() string {
	if len(lr.Topics) == 0 {
		return ""
	}
	return lr.Topics[0]
}

// ToLog converts the record back into a go-ethereum log.
func (lr LogRecord) ToLog() (types.Log, error) {
	if !common.IsHexAddress(lr.Address) {
		return types.Log{}, fmt.Errorf("invalid log address: %s", lr.Address)
	}

	topics := make([]common.Hash, 0, len(lr.Topics))
	for _, topic := range lr.Topics {
		raw, err := hexutil.Decode(topic)
		if err != nil {
			return types.Log{}, fmt.Errorf("invalid topic %s: %w", topic, err)
		}
		if len(raw) > common.HashLength {
			return types.Log{}, fmt.Errorf("topic length %d", len(raw))
		}
		topics = append(topics, common.BytesToHash(raw))
	}

	var data []byte
	if lr.Data != "" {
		decoded, err := hexutil.Decode(lr.Data)
		if err != nil {
			return types.Log{}, fmt.Errorf("invalid data: %w", err)
		}
		data = decoded
	}

	return types.Log{
		Address:     common.HexToAddress(lr.Address),
		Topics:      topics,
		Data:        data,
		BlockNumber: lr.BlockNumber,
		TxHash:      common.HexToHash(lr.TxHash),
		TxIndex:     uint(lr.TxIndex),
		BlockHash:   common.HexToHash(lr.BlockHash),
		Index:       uint(lr.LogIndex),
		Removed:     lr.Removed,
	}, nil
}

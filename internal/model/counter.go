package model

// LatestBlockCounter names the counter tracking the highest processed block.
const LatestBlockCounter = "LatestBlock"

// Counter is a named process-wide value.
type Counter struct {
	ID    string `json:"id"`
	Value uint64 `json:"value"`
}

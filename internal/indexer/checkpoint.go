package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bluechipScope/internal/model"
)

// Checkpointer remembers how far the runner got. Resume reports the first
// block that still has to be processed.
type Checkpointer interface {
	Resume(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, lastProcessed uint64) error
}

// Checkpoint tracks the last processed block.
type Checkpoint struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// FileCheckpoint persists checkpoints as a JSON file.
type FileCheckpoint struct {
	path string
}

func NewFileCheckpoint(path string) *FileCheckpoint {
	return &FileCheckpoint{path: path}
}

func (c *FileCheckpoint) Load() (Checkpoint, bool, error) {
	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return Checkpoint{}, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return cp, true, nil
}

func (c *FileCheckpoint) Resume(context.Context) (uint64, bool, error) {
	cp, ok, err := c.Load()
	if err != nil || !ok {
		return 0, false, err
	}
	return cp.LastProcessedBlock + 1, true, nil
}

func (c *FileCheckpoint) Save(_ context.Context, lastProcessed uint64) error {
	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	data, err := json.Marshal(Checkpoint{
		LastProcessedBlock: lastProcessed,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// CounterStore reads and writes named counters.
type CounterStore interface {
	LoadCounter(ctx context.Context, id string) (model.Counter, bool, error)
	SaveCounter(ctx context.Context, counter model.Counter) error
}

// CounterCheckpoint resumes from the LatestBlock counter the dispatcher keeps.
// The counter's block may have been applied only partially, so it is
// processed again.
type CounterCheckpoint struct {
	store CounterStore
}

func NewCounterCheckpoint(store CounterStore) *CounterCheckpoint {
	return &CounterCheckpoint{store: store}
}

func (c *CounterCheckpoint) Resume(ctx context.Context) (uint64, bool, error) {
	counter, ok, err := c.store.LoadCounter(ctx, model.LatestBlockCounter)
	if err != nil {
		return 0, false, fmt.Errorf("load latest block: %w", err)
	}
	return counter.Value, ok, nil
}

func (c *CounterCheckpoint) Save(ctx context.Context, lastProcessed uint64) error {
	counter := model.Counter{ID: model.LatestBlockCounter, Value: lastProcessed}
	if err := c.store.SaveCounter(ctx, counter); err != nil {
		return fmt.Errorf("save latest block: %w", err)
	}
	return nil
}

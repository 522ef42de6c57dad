package indexer

import (
	"context"
	"path/filepath"
	"testing"

	"bluechipScope/internal/model"
	"bluechipScope/internal/storage/memory"
)

func TestFileCheckpointResume(t *testing.T) {
	ctx := context.Background()
	cp := NewFileCheckpoint(filepath.Join(t.TempDir(), "state", "checkpoint.json"))

	if _, ok, err := cp.Resume(ctx); err != nil || ok {
		t.Fatalf("expected empty checkpoint: ok=%v err=%v", ok, err)
	}
	if err := cp.Save(ctx, 120); err != nil {
		t.Fatalf("save: %v", err)
	}
	next, ok, err := cp.Resume(ctx)
	if err != nil || !ok || next != 121 {
		t.Fatalf("expected resume at 121: next=%d ok=%v err=%v", next, ok, err)
	}
}

func TestFileCheckpointDirectory(t *testing.T) {
	cp := NewFileCheckpoint(t.TempDir())
	if _, _, err := cp.Load(); err == nil {
		t.Fatalf("expected error for directory path")
	}
}

func TestCounterCheckpointInclusive(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cp := NewCounterCheckpoint(store)

	if _, ok, err := cp.Resume(ctx); err != nil || ok {
		t.Fatalf("expected no counter: ok=%v err=%v", ok, err)
	}
	if err := store.SaveCounter(ctx, model.Counter{ID: model.LatestBlockCounter, Value: 88}); err != nil {
		t.Fatalf("save counter: %v", err)
	}
	next, ok, err := cp.Resume(ctx)
	if err != nil || !ok || next != 88 {
		t.Fatalf("expected resume at 88: next=%d ok=%v err=%v", next, ok, err)
	}

	if err := cp.Save(ctx, 99); err != nil {
		t.Fatalf("save: %v", err)
	}
	counter, _, _ := store.LoadCounter(ctx, model.LatestBlockCounter)
	if counter.Value != 99 {
		t.Fatalf("expected counter 99, got %d", counter.Value)
	}
}

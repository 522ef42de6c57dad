package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"bluechipScope/internal/model"
)

func TestJsonlStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs.jsonl")
	sink := NewJsonlStorage(path)

	first := []model.LogRecord{
		{BlockNumber: 10, LogIndex: 0, Address: "0x1111111111111111111111111111111111111111", Topics: []string{"0xaa"}},
		{BlockNumber: 10, LogIndex: 1, Address: "0x1111111111111111111111111111111111111111", Topics: []string{"0xbb"}},
	}
	second := []model.LogRecord{
		{BlockNumber: 11, LogIndex: 0, Address: "0x1111111111111111111111111111111111111111", Topics: []string{"0xcc"}},
	}

	ctx := context.Background()
	if err := sink.PutLogBatch(ctx, first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := sink.PutLogBatch(ctx, nil); err != nil {
		t.Fatalf("put empty: %v", err)
	}
	if err := sink.PutLogBatch(ctx, second); err != nil {
		t.Fatalf("put second: %v", err)
	}

	var got []model.LogRecord
	if err := ReadLogRecords(path, func(r model.LogRecord) error {
		got = append(got, r)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}

	want := append(append([]model.LogRecord{}, first...), second...)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("records mismatch: %+v != %+v", got, want)
	}
}

func TestReadLogRecordsReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("\n{not json}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := ReadLogRecords(path, func(model.LogRecord) error { return nil })
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

type recordingSink struct {
	batches int
}

func (r *recordingSink) PutLogBatch(_ context.Context, _ []model.LogRecord) error {
	r.batches++
	return nil
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := MultiSink{a, nil, b}
	if err := sink.PutLogBatch(context.Background(), []model.LogRecord{{}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if a.batches != 1 || b.batches != 1 {
		t.Fatalf("batches %d/%d", a.batches, b.batches)
	}
}

func TestJsonlDecodeErrorsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	sink := NewJsonlDecodeErrors(path)
	ctx := context.Background()

	for i := uint64(0); i < 2; i++ {
		if err := sink.PutDecodeError(ctx, model.DecodeError{BlockNumber: 5, LogIndex: i, Error: "bad topics"}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var last model.DecodeError
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if last.LogIndex != 1 || last.Error != "bad topics" {
		t.Fatalf("unexpected decode error: %+v", last)
	}
}

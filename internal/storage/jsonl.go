package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bluechipScope/internal/model"
)

// JsonlStorage archives raw log records in a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutLogBatch appends a batch of log records as JSON lines.
func (s *JsonlStorage) PutLogBatch(_ context.Context, logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLines(s.path, len(logs), func(i int) (interface{}, string) {
		return logs[i], "log record"
	})
}

// JsonlDecodeErrors appends decode failures to a JSONL file.
type JsonlDecodeErrors struct {
	path string
	mu   sync.Mutex
}

func NewJsonlDecodeErrors(path string) *JsonlDecodeErrors {
	return &JsonlDecodeErrors{path: path}
}

func (s *JsonlDecodeErrors) PutDecodeError(_ context.Context, decodeErr model.DecodeError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLines(s.path, 1, func(int) (interface{}, string) {
		return decodeErr, "decode error"
	})
}

func appendLines(path string, n int, item func(i int) (interface{}, string)) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for i := 0; i < n; i++ {
		value, what := item(i)
		line, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", what, err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write %s: %w", what, err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ReadLogRecords streams every record of a JSONL archive to visit, in file
// order. Blank lines are skipped.
func ReadLogRecords(path string, visit func(model.LogRecord) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var record model.LogRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("line %d: decode log record: %w", line, err)
		}
		if err := visit(record); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}

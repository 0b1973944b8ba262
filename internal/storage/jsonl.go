package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"whaleScope/internal/model"
)

// JsonlStorage appends LP prices and whale rankings to JSONL files. An empty
// path disables that stream.
type JsonlStorage struct {
	pricesPath string
	whalesPath string
	mu         sync.Mutex
}

func NewJsonlStorage(pricesPath, whalesPath string) *JsonlStorage {
	return &JsonlStorage{pricesPath: pricesPath, whalesPath: whalesPath}
}

// PutLpPrices appends one line per LP price.
func (s *JsonlStorage) PutLpPrices(_ context.Context, runAt time.Time, prices []model.LpPrice) error {
	if s.pricesPath == "" || len(prices) == 0 {
		return nil
	}
	records := make([]interface{}, len(prices))
	for i, p := range prices {
		records[i] = model.LpPriceRecord{RunAt: runAt, LpPrice: p}
	}
	return s.appendLines(s.pricesPath, records)
}

// PutWhales appends one line per ranked wallet.
func (s *JsonlStorage) PutWhales(_ context.Context, runAt time.Time, whales []model.Whale) error {
	if s.whalesPath == "" || len(whales) == 0 {
		return nil
	}
	ranked := WhaleRecords(runAt, whales)
	records := make([]interface{}, len(ranked))
	for i, r := range ranked {
		records[i] = r
	}
	return s.appendLines(s.whalesPath, records)
}

func (s *JsonlStorage) appendLines(path string, records []interface{}) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
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

package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"whaleScope/internal/model"
)

// FileStore keeps the watchlist in a local JSON file.
type FileStore struct {
	Path string
}

// Load returns the stored watchlist, or an empty one when the file does not
// exist yet.
func (s *FileStore) Load() (*Watchlist, bool, error) {
	if s == nil || s.Path == "" {
		return New(), false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), false, nil
		}
		return nil, false, fmt.Errorf("read watchlist: %w", err)
	}

	list := New()
	if err := json.Unmarshal(data, list); err != nil {
		return nil, false, fmt.Errorf("parse watchlist: %w", err)
	}
	if list.TokenHoldings == nil {
		list.TokenHoldings = make(map[string]model.Portfolio)
	}
	list.refreshWallets()
	return list, true, nil
}

func (s *FileStore) Save(list *Watchlist) error {
	if s == nil || s.Path == "" {
		return fmt.Errorf("watchlist path is required")
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create watchlist dir: %w", err)
		}
	}

	list.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal watchlist: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write watchlist tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename watchlist: %w", err)
	}
	return nil
}

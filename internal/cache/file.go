package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore persists one JSON snapshot file per dataset family under a
// cache directory. File absence or corruption is reported as a miss or an
// error respectively; neither is fatal to callers.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed snapshot store rooted at dir. The
// directory is created lazily on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(family Family) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_cache.json", family))
}

// Load reads a family's snapshot file.
func (s *FileStore) Load(_ context.Context, family Family) (*Snapshot, error) {
	raw, err := os.ReadFile(s.path(family))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", s.path(family), err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", s.path(family), err)
	}
	return &snap, nil
}

// Save writes a family's snapshot file. The TTL is ignored here; freshness
// is enforced at load time against fetched_at.
func (s *FileStore) Save(_ context.Context, family Family, snap *Snapshot, _ time.Duration) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir %s: %w", s.dir, err)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", family, err)
	}
	if err := os.WriteFile(s.path(family), raw, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", s.path(family), err)
	}
	return nil
}

// Delete removes a family's snapshot file if present.
func (s *FileStore) Delete(_ context.Context, family Family) error {
	if err := os.Remove(s.path(family)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

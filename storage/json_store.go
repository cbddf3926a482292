package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cattle-metrics-scraper/models"
)

// SnapshotStore persists the current snapshot as a pretty-printed JSON file.
type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) Path() string { return s.path }

// Load returns the stored snapshot, or nil when the file does not exist yet.
func (s *SnapshotStore) Load() (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", s.path, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("json: decode %q: %w", s.path, err)
	}
	return &snap, nil
}

// Save writes snap to a temporary file next to the target and renames it
// into place, so readers never observe a partially written snapshot.
func (s *SnapshotStore) Save(snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("json: refusing to save nil snapshot")
	}

	data, err := Marshal(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("json: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("json: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("json: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("json: replace %q: %w", s.path, err)
	}
	return nil
}

// Marshal renders a snapshot the way it is stored on disk: two-space
// indentation and a trailing newline.
func Marshal(snap *models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json: encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileStore implements SessionStore on the local filesystem. Each
// session is one JSON file under the store directory. The default
// choice when no REDIS_URL is configured.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

var _ SessionStore = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (f *FileStore) sessionPath(id uuid.UUID) string {
	return filepath.Join(f.dir, id.String()+".json")
}

// Ping verifies the directory is still writable.
func (f *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("session directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("session path %s is not a directory", f.dir)
	}
	return nil
}

// SaveSession writes the document atomically via a temp file rename, so
// a crash mid-write never corrupts the previous save.
func (f *FileStore) SaveSession(ctx context.Context, doc *SessionDoc) error {
	doc.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	path := f.sessionPath(doc.ID)
	tmp, err := os.CreateTemp(f.dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	f.logger.Debug("session saved", "session_id", doc.ID, "path", path)
	return nil
}

func (f *FileStore) LoadSession(ctx context.Context, id uuid.UUID) (*SessionDoc, error) {
	data, err := os.ReadFile(f.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var doc SessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &doc, nil
}

func (f *FileStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := os.Remove(f.sessionPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

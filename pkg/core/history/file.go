package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/sirupsen/logrus"
)

// Default filename for persistence
const defaultHistoryFile = "history.json"

func init() {
	Register("file", func(cfg ProviderConfig) (Store, error) {
		return NewFileStore(cfg.Path, cfg.logger())
	})
}

// FileStore keeps the log in a single JSON file that is rewritten on every append.
type FileStore struct {
	mu       sync.RWMutex
	entries  []Entry
	filePath string
	logger   logrus.FieldLogger
}

// NewFileStore opens (or creates) the JSON log at path. A directory path, or an
// empty one, resolves to history.json inside it.
func NewFileStore(path string, logger logrus.FieldLogger) (*FileStore, error) {
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, defaultHistoryFile)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, coreErrors.NewStoreError("open", fmt.Errorf("failed to create history directory: %w", err))
	}

	s := &FileStore{filePath: path, logger: orDiscard(logger)}
	if err := s.load(); err != nil {
		return nil, coreErrors.NewStoreError("open", err)
	}

	s.logger.WithFields(logrus.Fields{"path": s.filePath, "entries": len(s.entries)}).Debug("History file loaded")
	return s, nil
}

// load reads the history from its JSON file.
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.entries = []Entry{}
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("failed to read history file %s: %w", s.filePath, err)
	}

	if len(data) == 0 {
		s.entries = []Entry{}
		return nil
	}

	var loaded []Entry
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal history from %s: %w", s.filePath, err)
	}
	s.entries = loaded
	return nil
}

// save replaces the log atomically: temp file, fsync, rename, directory fsync.
func (s *FileStore) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		return fmt.Errorf("failed to replace history file %s: %w", s.filePath, err)
	}
	if err := syncDir(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("failed to sync history directory: %w", err)
	}
	return nil
}

// syncDir flushes a directory so a completed rename inside it survives a crash.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

func (s *FileStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, coreErrors.NewStoreError("append", err)
	}
	entry = prepare(entry)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(append(make([]Entry, 0, len(s.entries)+1), s.entries...), entry)
	if err := s.save(next); err != nil {
		s.logger.WithError(err).WithField("path", s.filePath).Error("Failed to persist history entry")
		return Entry{}, coreErrors.NewStoreError("append", err)
	}
	s.entries = next
	return entry, nil
}

func (s *FileStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, coreErrors.NewStoreError("list", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.entries, ClampLimit(limit)), nil
}

func (s *FileStore) Close() error { return nil }

// Package filestore keeps session values in a single JSON file on local disk.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alertautec/alertautec/internal/ports"
)

// DefaultFileName is the file created inside the session directory.
const DefaultFileName = "session.json"

var _ ports.KeyValueStore = (*Store)(nil)

// Options configures a Store.
type Options struct {
	// Dir holds the session file. It is created with 0700 on first write.
	Dir string
	// FileName defaults to DefaultFileName.
	FileName string
	Logger   *slog.Logger
}

// Store is a JSON object file mapping keys to string values. Writes replace
// the file atomically through a temp file and rename. The mutex serializes
// access within one process only.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// New creates a file-backed store. The file is not touched until first use.
func New(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, errors.New("session directory is required")
	}
	name := opts.FileName
	if name == "" {
		name = DefaultFileName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   filepath.Join(opts.Dir, name),
		logger: logger,
	}, nil
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load(ctx)
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if len(values) == 0 {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", rmErr)
		}
		return nil
	}
	return s.write(values)
}

// load reads the file. A missing file is empty; an unreadable JSON document is
// logged and treated as empty so the next write replaces it.
func (s *Store) load(ctx context.Context) (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if unmarshalErr := json.Unmarshal(data, &values); unmarshalErr != nil {
		s.logger.WarnContext(ctx, "ignoring unreadable session file", "path", s.path, "error", unmarshalErr)
		return map[string]string{}, nil
	}
	return values, nil
}

func (s *Store) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
		return fmt.Errorf("create session directory: %w", mkErr)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		return cleanupTemp(tmp, tmpName, fmt.Errorf("write temp session file: %w", writeErr))
	}
	if syncErr := tmp.Sync(); syncErr != nil {
		return cleanupTemp(tmp, tmpName, fmt.Errorf("sync temp session file: %w", syncErr))
	}
	if closeErr := tmp.Close(); closeErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp session file: %w", closeErr)
	}
	if renameErr := os.Rename(tmpName, s.path); renameErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", renameErr)
	}
	return nil
}

func cleanupTemp(f *os.File, name string, cause error) error {
	errs := []error{cause}
	if err := f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close temp session file: %w", err))
	}
	if err := os.Remove(name); err != nil {
		errs = append(errs, fmt.Errorf("remove temp session file: %w", err))
	}
	return errors.Join(errs...)
}

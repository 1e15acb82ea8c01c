// Package file keeps the hotel document as a single JSON file on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"hotelcore/pkg/domain"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "hotel.json"

var _ domain.DocumentStore = (*Store)(nil)

// Store reads and writes the document at path. Writes go through a temp file
// renamed over the target.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store for path, appending ".json" when missing. The
// parent directory and an empty "{}" document are created if absent.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &Store{path: path}, nil
}

// Path returns the resolved document path. It is a test and inspection hook.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the document.
func (s *Store) Load(_ context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path) // #nosec G304 -- path is operator configuration
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return domain.DecodeDocument(b)
}

// Save encodes doc and replaces the file.
func (s *Store) Save(_ context.Context, doc domain.Document) error {
	b, err := domain.EncodeDocument(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".hotel-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

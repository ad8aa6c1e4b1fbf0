// Package storage persists downloaded manifests and segments below an
// output directory. It works on an afero filesystem so tests can run in memory.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Store maps segment URLs onto files below Root.
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a store writing below root on fs.
func New(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

// Root returns the output directory.
func (s *Store) Root() string {
	return s.root
}

// PathFor returns the destination of segmentURL: the part after baseURL,
// without query or fragment, below the store root. ok is false when
// segmentURL does not start with baseURL or nothing remains of it.
func (s *Store) PathFor(baseURL, segmentURL string) (string, bool) {
	if !strings.HasPrefix(segmentURL, baseURL) {
		return "", false
	}
	rel := segmentURL[len(baseURL):]
	if end := strings.IndexAny(rel, "?#"); end >= 0 {
		rel = rel[:end]
	}
	// Cleaning against "/" keeps ".." segments from leaving the root.
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if rel == "" {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), true
}

// Exists reports whether a file is already present at p.
func (s *Store) Exists(p string) (bool, error) {
	return afero.Exists(s.fs, p)
}

// Save writes data to p, creating parent directories as needed.
func (s *Store) Save(p string, data []byte) error {
	if err := s.fs.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return fmt.Errorf("could not create parent directory of %s: %w", p, err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", p, err)
	}
	return nil
}

// ReadFile reads p from the store's filesystem.
func (s *Store) ReadFile(p string) ([]byte, error) {
	return afero.ReadFile(s.fs, p)
}

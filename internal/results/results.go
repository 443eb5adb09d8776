// Package results answers "what has already been converted".
//
// The store is a derived view over the output directory: every query re-reads
// the directory instead of maintaining an incremental in-memory registry, so
// the answer is always consistent with what is actually on disk and there is
// no cache to invalidate.
package results

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidName is returned for names that are not a bare PDF file name.
var ErrInvalidName = errors.New("invalid output name")

// ErrNotFound is returned when the named output does not exist.
var ErrNotFound = errors.New("output not found")

// Store lists and resolves converted outputs in one directory.
type Store struct {
	dir string
}

// NewStore returns a store over the given output directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the output directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the sorted PDF file names currently present in the output
// directory. The directory is re-read on every call.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Resolve maps a bare output name to its full path, rejecting anything that
// could escape the output directory. The file must exist at call time.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("stat output: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path, nil
}

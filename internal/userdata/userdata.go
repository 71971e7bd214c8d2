// Package userdata manages the on-disk data areas of a profile: cache,
// history, cookies and friends, each in its own subdirectory.
package userdata

import (
	"fmt"
	"os"
	"path/filepath"
)

// Kind names one category of user data.
type Kind string

const (
	Cache        Kind = "cache"
	History      Kind = "history"
	Bookmarks    Kind = "bookmarks"
	Cookies      Kind = "cookies"
	LocalStorage Kind = "local_storage"
)

// Kinds lists every data category.
func Kinds() []Kind {
	return []Kind{Cache, History, Bookmarks, Cookies, LocalStorage}
}

// Valid reports whether k names a known category.
func Valid(k Kind) bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Store is rooted at one profile's data directory.
type Store struct {
	dir string
}

// Open creates the data directory if needed and returns a store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root data directory.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns the directory holding one category of data. The
// directory is not created until something writes there.
func (s *Store) PathFor(k Kind) string {
	return filepath.Join(s.dir, string(k))
}

// Clear removes all data of one category. Clearing a category that has
// no data is a no-op.
func (s *Store) Clear(k Kind) error {
	if !Valid(k) {
		return fmt.Errorf("unknown data kind %q", k)
	}
	if err := os.RemoveAll(s.PathFor(k)); err != nil {
		return fmt.Errorf("clear %s: %w", k, err)
	}
	return nil
}

// ClearAll wipes the whole data directory and recreates it empty.
func (s *Store) ClearAll() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clear data dir: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("recreate data dir: %w", err)
	}
	return nil
}

// Package passwords stores site credentials for a profile. Entries are
// keyed by normalized origin so https://www.example.com/ and
// example.com share one credential list. The store persists as JSON
// readable only by the owner.
package passwords

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Entry is one saved credential.
type Entry struct {
	URL         string    `json:"url"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	UseCount    int       `json:"use_count"`
}

// NormalizeOrigin reduces a URL to its matching key: scheme, www prefix
// and trailing slashes dropped, lowercased.
func NormalizeOrigin(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "www.")
	url = strings.TrimRight(url, "/")
	return strings.ToLower(url)
}

// Store holds all credentials for one profile.
type Store struct {
	path     string
	entries  map[string][]Entry
	modified bool
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string][]Entry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read passwords: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse passwords: %w", err)
	}
	return s, nil
}

// Add saves a new credential. A second entry for the same origin and
// username is rejected.
func (s *Store) Add(url, username, password string) error {
	origin := NormalizeOrigin(url)
	for _, e := range s.entries[origin] {
		if e.Username == username {
			return fmt.Errorf("password for %s on %s already exists", username, origin)
		}
	}

	now := time.Now().UTC()
	s.entries[origin] = append(s.entries[origin], Entry{
		URL:        origin,
		Username:   username,
		Password:   password,
		CreatedAt:  now,
		ModifiedAt: now,
	})
	s.modified = true
	return nil
}

// ForURL returns the credentials stored for a URL's origin.
func (s *Store) ForURL(url string) []Entry {
	entries := s.entries[NormalizeOrigin(url)]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Get looks up one credential by origin and username.
func (s *Store) Get(url, username string) (Entry, bool) {
	for _, e := range s.entries[NormalizeOrigin(url)] {
		if e.Username == username {
			return e, true
		}
	}
	return Entry{}, false
}

// Update replaces the password of an existing credential.
func (s *Store) Update(url, username, newPassword string) error {
	origin := NormalizeOrigin(url)
	entries := s.entries[origin]
	for i := range entries {
		if entries[i].Username == username {
			entries[i].Password = newPassword
			entries[i].ModifiedAt = time.Now().UTC()
			s.modified = true
			return nil
		}
	}
	return fmt.Errorf("no password for %s on %s", username, origin)
}

// Delete removes one credential. The origin's list disappears with its
// last entry.
func (s *Store) Delete(url, username string) error {
	origin := NormalizeOrigin(url)
	entries := s.entries[origin]
	for i := range entries {
		if entries[i].Username == username {
			entries = append(entries[:i], entries[i+1:]...)
			if len(entries) == 0 {
				delete(s.entries, origin)
			} else {
				s.entries[origin] = entries
			}
			s.modified = true
			return nil
		}
	}
	return fmt.Errorf("no password for %s on %s", username, origin)
}

// RecordUse bumps the use counter for autofill ranking.
func (s *Store) RecordUse(url, username string) {
	entries := s.entries[NormalizeOrigin(url)]
	for i := range entries {
		if entries[i].Username == username {
			entries[i].UseCount++
			s.modified = true
			return
		}
	}
}

// All returns every credential ordered by origin then username.
func (s *Store) All() []Entry {
	var out []Entry
	for _, entries := range s.entries {
		out = append(out, entries...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].URL != out[j].URL {
			return out[i].URL < out[j].URL
		}
		return out[i].Username < out[j].Username
	})
	return out
}

// Count returns the total number of stored credentials.
func (s *Store) Count() int {
	n := 0
	for _, entries := range s.entries {
		n += len(entries)
	}
	return n
}

// Search matches query against origin, username and display name,
// case-insensitively.
func (s *Store) Search(query string) []Entry {
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range s.All() {
		if strings.Contains(strings.ToLower(e.URL), q) ||
			strings.Contains(strings.ToLower(e.Username), q) ||
			strings.Contains(strings.ToLower(e.DisplayName), q) {
			out = append(out, e)
		}
	}
	return out
}

// ClearAll drops every credential.
func (s *Store) ClearAll() {
	s.entries = make(map[string][]Entry)
	s.modified = true
}

// Modified reports whether the store has unsaved changes.
func (s *Store) Modified() bool {
	return s.modified
}

// Save writes the store to disk with owner-only permissions.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal passwords: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write passwords: %w", err)
	}
	s.modified = false
	return nil
}

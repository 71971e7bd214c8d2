// Package extensions discovers extension manifests on disk. Extensions are
// declarative only: manifests are read and validated, nothing is executed.
package extensions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lotas/blattwerk/internal/applog"
)

const (
	manifestFile = "manifest.json"
	defaultEntry = "main.js"
)

// Permission names a capability an extension may request.
type Permission string

const (
	Tabs       Permission = "tabs"
	Bookmarks  Permission = "bookmarks"
	History    Permission = "history"
	Storage    Permission = "storage"
	Cookies    Permission = "cookies"
	WebRequest Permission = "webrequest"
	Network    Permission = "network"
)

var knownPermissions = map[Permission]bool{
	Tabs:       true,
	Bookmarks:  true,
	History:    true,
	Storage:    true,
	Cookies:    true,
	WebRequest: true,
	Network:    true,
}

// Manifest describes one extension, parsed from its manifest.json.
type Manifest struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description,omitempty"`
	Author      string       `json:"author,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
	Entry       string       `json:"entry,omitempty"`
}

// Validate checks required fields and rejects unknown permissions.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("manifest missing id")
	}
	if m.Name == "" {
		return fmt.Errorf("manifest missing name")
	}
	if m.Version == "" {
		return fmt.Errorf("manifest missing version")
	}
	for _, p := range m.Permissions {
		if !knownPermissions[p] {
			return fmt.Errorf("unknown permission %q", p)
		}
	}
	return nil
}

// HasPermission reports whether the manifest requests a permission.
func (m *Manifest) HasPermission(p Permission) bool {
	for _, got := range m.Permissions {
		if got == p {
			return true
		}
	}
	return false
}

// Load reads and validates the manifest in an extension directory.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Entry == "" {
		m.Entry = defaultEntry
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Extension is a discovered extension and its on-disk location.
type Extension struct {
	Manifest
	Dir     string
	Enabled bool
}

// Registry holds the extensions found under one root directory.
type Registry struct {
	root string
	exts map[string]*Extension
}

// NewRegistry returns a registry rooted at dir. Call Scan to populate it.
func NewRegistry(dir string) *Registry {
	return &Registry{root: dir, exts: make(map[string]*Extension)}
}

// Scan reads every subdirectory of the root and registers each valid
// manifest. Broken or duplicate manifests are logged and skipped so one bad
// extension cannot hide the rest. A missing root means no extensions.
func (r *Registry) Scan() error {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			r.exts = make(map[string]*Extension)
			return nil
		}
		return fmt.Errorf("scan extensions: %w", err)
	}

	r.exts = make(map[string]*Extension)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(r.root, e.Name())
		m, err := Load(dir)
		if err != nil {
			applog.Error("extensions.scan", err, "dir", e.Name())
			continue
		}
		if _, dup := r.exts[m.ID]; dup {
			applog.Error("extensions.scan", fmt.Errorf("duplicate extension id %q", m.ID), "dir", e.Name())
			continue
		}
		r.exts[m.ID] = &Extension{Manifest: *m, Dir: dir, Enabled: true}
	}
	return nil
}

// List returns discovered extensions sorted by name, then id.
func (r *Registry) List() []*Extension {
	out := make([]*Extension, 0, len(r.exts))
	for _, ext := range r.exts {
		out = append(out, ext)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get looks up an extension by id.
func (r *Registry) Get(id string) (*Extension, bool) {
	ext, ok := r.exts[id]
	return ext, ok
}

// Enable marks an extension enabled.
func (r *Registry) Enable(id string) error {
	ext, ok := r.exts[id]
	if !ok {
		return fmt.Errorf("extension %s not found", id)
	}
	ext.Enabled = true
	return nil
}

// Disable marks an extension disabled.
func (r *Registry) Disable(id string) error {
	ext, ok := r.exts[id]
	if !ok {
		return fmt.Errorf("extension %s not found", id)
	}
	ext.Enabled = false
	return nil
}

// Count returns the number of discovered extensions.
func (r *Registry) Count() int {
	return len(r.exts)
}

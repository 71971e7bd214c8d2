// Package profiles manages named browser profiles, each owning its own
// directory for settings, databases and user data. The profile index
// persists as index.json under the profiles root.
package profiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const indexFile = "index.json"

// DefaultName is the profile created on first run.
const DefaultName = "default"

// Profile is one browser identity.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"-"`
}

// DataDir returns the profile's user data directory.
func (p Profile) DataDir() string {
	return filepath.Join(p.Path, "data")
}

// Manager holds the profile index for one profiles root.
type Manager struct {
	root     string
	profiles []Profile
	active   string
}

type indexDoc struct {
	Active   string    `json:"active,omitempty"`
	Profiles []Profile `json:"profiles"`
}

// DefaultRoot returns the per-user profiles directory.
func DefaultRoot() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "blattwerk", "profiles"), nil
}

// Open loads the profile index at root, creating the directory on first
// use.
func Open(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create profiles dir: %w", err)
	}

	m := &Manager{root: root}

	data, err := os.ReadFile(filepath.Join(root, indexFile))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile index: %w", err)
	}

	var doc indexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profile index: %w", err)
	}
	m.active = doc.Active
	m.profiles = doc.Profiles
	for i := range m.profiles {
		m.profiles[i].Path = filepath.Join(root, m.profiles[i].ID)
	}
	return m, nil
}

// Create adds a new profile and makes it active when none is. Names
// must be unique.
func (m *Manager) Create(name string) (Profile, error) {
	if name == "" {
		return Profile{}, fmt.Errorf("profile name is empty")
	}
	if _, ok := m.ByName(name); ok {
		return Profile{}, fmt.Errorf("profile %q already exists", name)
	}

	id := uuid.NewString()
	p := Profile{
		ID:   id,
		Name: name,
		Path: filepath.Join(m.root, id),
	}

	if err := os.MkdirAll(p.Path, 0o755); err != nil {
		return Profile{}, fmt.Errorf("create profile dir: %w", err)
	}

	m.profiles = append(m.profiles, p)
	if m.active == "" {
		m.active = p.ID
	}
	if err := m.save(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Profiles returns all known profiles in creation order.
func (m *Manager) Profiles() []Profile {
	return m.profiles
}

// Active returns the active profile, if one is set.
func (m *Manager) Active() (Profile, bool) {
	for _, p := range m.profiles {
		if p.ID == m.active {
			return p, true
		}
	}
	return Profile{}, false
}

// SetActive switches the active profile by ID.
func (m *Manager) SetActive(id string) error {
	for _, p := range m.profiles {
		if p.ID == id {
			m.active = id
			return m.save()
		}
	}
	return fmt.Errorf("profile %q not found", id)
}

// ByName looks a profile up by its name.
func (m *Manager) ByName(name string) (Profile, bool) {
	for _, p := range m.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Delete removes a profile and its directory. The active profile cannot
// be deleted.
func (m *Manager) Delete(id string) error {
	if id == m.active {
		return fmt.Errorf("cannot delete the active profile")
	}
	for i, p := range m.profiles {
		if p.ID == id {
			if err := os.RemoveAll(p.Path); err != nil {
				return fmt.Errorf("remove profile dir: %w", err)
			}
			m.profiles = append(m.profiles[:i], m.profiles[i+1:]...)
			return m.save()
		}
	}
	return fmt.Errorf("profile %q not found", id)
}

// Ensure returns the profile with the given name, creating it when
// absent.
func (m *Manager) Ensure(name string) (Profile, error) {
	if p, ok := m.ByName(name); ok {
		return p, nil
	}
	return m.Create(name)
}

func (m *Manager) save() error {
	doc := indexDoc{Active: m.active, Profiles: m.profiles}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.root, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("write profile index: %w", err)
	}
	return nil
}

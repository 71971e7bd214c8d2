package extensions

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root, dir, content string) {
	t.Helper()
	extDir := filepath.Join(root, dir)
	if err := os.MkdirAll(extDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", extDir, err)
	}
	if err := os.WriteFile(filepath.Join(extDir, "manifest.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "adblock", `{
		"id": "adblock",
		"name": "Ad Blocker",
		"version": "1.2.0",
		"description": "Blocks ads",
		"author": "someone",
		"permissions": ["network", "storage"]
	}`)

	m, err := Load(filepath.Join(root, "adblock"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "adblock" {
		t.Errorf("expected id 'adblock', got %q", m.ID)
	}
	if m.Name != "Ad Blocker" {
		t.Errorf("expected name 'Ad Blocker', got %q", m.Name)
	}
	if m.Entry != "main.js" {
		t.Errorf("expected default entry 'main.js', got %q", m.Entry)
	}
	if !m.HasPermission(Network) {
		t.Error("expected network permission")
	}
	if m.HasPermission(Tabs) {
		t.Error("did not expect tabs permission")
	}
}

func TestLoad_MissingManifest(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for directory without manifest")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Manifest
		wantErr bool
	}{
		{"valid", Manifest{ID: "a", Name: "A", Version: "1.0"}, false},
		{"all permissions", Manifest{ID: "a", Name: "A", Version: "1.0",
			Permissions: []Permission{Tabs, Bookmarks, History, Storage, Cookies, WebRequest, Network}}, false},
		{"missing id", Manifest{Name: "A", Version: "1.0"}, true},
		{"missing name", Manifest{ID: "a", Version: "1.0"}, true},
		{"missing version", Manifest{ID: "a", Name: "A"}, true},
		{"unknown permission", Manifest{ID: "a", Name: "A", Version: "1.0",
			Permissions: []Permission{"filesystem"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "beta", `{"id": "beta", "name": "Beta", "version": "0.1"}`)
	writeManifest(t, root, "alpha", `{"id": "alpha", "name": "Alpha", "version": "2.0", "permissions": ["tabs"]}`)
	writeManifest(t, root, "broken", `{not json`)
	writeManifest(t, root, "invalid", `{"name": "no id"}`)

	// A stray file at the root must be ignored.
	if err := os.WriteFile(filepath.Join(root, "README.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := NewRegistry(root)
	if err := r.Scan(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Count() != 2 {
		t.Fatalf("expected 2 extensions, got %d", r.Count())
	}

	list := r.List()
	if list[0].ID != "alpha" || list[1].ID != "beta" {
		t.Errorf("expected sorted [alpha beta], got [%s %s]", list[0].ID, list[1].ID)
	}
	if list[0].Dir != filepath.Join(root, "alpha") {
		t.Errorf("expected dir recorded, got %q", list[0].Dir)
	}
	if !list[0].Enabled {
		t.Error("expected extensions enabled after scan")
	}
}

func TestScan_MissingRoot(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "nope"))
	if err := r.Scan(); err != nil {
		t.Fatalf("expected no error for missing root, got %v", err)
	}
	if r.Count() != 0 {
		t.Errorf("expected empty registry, got %d", r.Count())
	}
}

func TestScan_DuplicateID(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "one", `{"id": "dup", "name": "One", "version": "1.0"}`)
	writeManifest(t, root, "two", `{"id": "dup", "name": "Two", "version": "1.0"}`)

	r := NewRegistry(root)
	if err := r.Scan(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("expected duplicate id skipped, got %d extensions", r.Count())
	}
}

func TestEnableDisable(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "ext", `{"id": "ext", "name": "Ext", "version": "1.0"}`)

	r := NewRegistry(root)
	if err := r.Scan(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := r.Disable("ext"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	ext, ok := r.Get("ext")
	if !ok {
		t.Fatal("expected extension present")
	}
	if ext.Enabled {
		t.Error("expected extension disabled")
	}

	if err := r.Enable("ext"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !ext.Enabled {
		t.Error("expected extension enabled")
	}

	if err := r.Enable("ghost"); err == nil {
		t.Error("expected error for unknown id")
	}
}

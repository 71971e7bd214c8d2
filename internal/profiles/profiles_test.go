package profiles

import (
	"os"
	"testing"
)

func TestCreateAndActive(t *testing.T) {
	m, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	p, err := m.Create("work")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" {
		t.Error("expected non-empty profile ID")
	}
	if p.Name != "work" {
		t.Errorf("Name = %q, want work", p.Name)
	}
	if _, err := os.Stat(p.Path); err != nil {
		t.Errorf("profile dir not created: %v", err)
	}

	active, ok := m.Active()
	if !ok {
		t.Fatal("first profile should become active")
	}
	if active.ID != p.ID {
		t.Errorf("active = %q, want %q", active.ID, p.ID)
	}

	// second profile does not steal active
	if _, err := m.Create("personal"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	active, _ = m.Active()
	if active.Name != "work" {
		t.Errorf("active = %q, want work", active.Name)
	}
}

func TestCreateDuplicateName(t *testing.T) {
	m, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := m.Create("work"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create("work"); err == nil {
		t.Error("expected error for duplicate profile name")
	}
	if _, err := m.Create(""); err == nil {
		t.Error("expected error for empty profile name")
	}
}

func TestIndexPersists(t *testing.T) {
	root := t.TempDir()

	m, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	work, err := m.Create("work")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	personal, err := m.Create("personal")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.SetActive(personal.ID); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(reopened.Profiles()) != 2 {
		t.Fatalf("Profiles = %d, want 2", len(reopened.Profiles()))
	}
	active, ok := reopened.Active()
	if !ok || active.ID != personal.ID {
		t.Errorf("active after reopen = %v, want %q", active.ID, personal.ID)
	}
	got, ok := reopened.ByName("work")
	if !ok {
		t.Fatal("work profile lost")
	}
	if got.Path != work.Path {
		t.Errorf("Path = %q, want %q (rebuilt from root)", got.Path, work.Path)
	}
}

func TestSetActiveUnknown(t *testing.T) {
	m, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := m.SetActive("nope"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestDelete(t *testing.T) {
	m, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	work, err := m.Create("work")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	personal, err := m.Create("personal")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.Delete(work.ID); err == nil {
		t.Error("deleting the active profile should fail")
	}

	if err := m.Delete(personal.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(personal.Path); !os.IsNotExist(err) {
		t.Errorf("profile dir still present: %v", err)
	}
	if _, ok := m.ByName("personal"); ok {
		t.Error("deleted profile still in index")
	}
}

func TestEnsure(t *testing.T) {
	m, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	p1, err := m.Ensure(DefaultName)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	p2, err := m.Ensure(DefaultName)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p1.ID != p2.ID {
		t.Errorf("Ensure created a second profile: %q vs %q", p1.ID, p2.ID)
	}
	if len(m.Profiles()) != 1 {
		t.Errorf("Profiles = %d, want 1", len(m.Profiles()))
	}
}

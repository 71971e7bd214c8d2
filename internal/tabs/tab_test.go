package tabs

import (
	"reflect"
	"testing"
)

func TestNewTab(t *testing.T) {
	tab := NewTab("https://example.com")

	if tab.ID == "" {
		t.Error("expected non-empty ID")
	}
	if tab.URL != "https://example.com" {
		t.Errorf("URL = %q, want https://example.com", tab.URL)
	}
	if len(tab.History) != 1 || tab.History[0] != "https://example.com" {
		t.Errorf("History = %v, want [https://example.com]", tab.History)
	}
	if tab.HistoryIndex != 0 {
		t.Errorf("HistoryIndex = %d, want 0", tab.HistoryIndex)
	}
	if tab.Loading {
		t.Error("new tab should not be loading")
	}
	if tab.CanGoBack() || tab.CanGoForward() {
		t.Error("new tab should have no back/forward entries")
	}
}

func TestNavigateTo(t *testing.T) {
	tab := NewTab("https://a.com")
	tab.NavigateTo("https://b.com")

	want := []string{"https://a.com", "https://b.com"}
	if !reflect.DeepEqual(tab.History, want) {
		t.Errorf("History = %v, want %v", tab.History, want)
	}
	if tab.HistoryIndex != 1 {
		t.Errorf("HistoryIndex = %d, want 1", tab.HistoryIndex)
	}
	if tab.URL != "https://b.com" {
		t.Errorf("URL = %q, want https://b.com", tab.URL)
	}
	if !tab.Loading {
		t.Error("navigate should set loading")
	}
	if !tab.CanGoBack() {
		t.Error("expected CanGoBack after navigate")
	}
	if tab.CanGoForward() {
		t.Error("expected no forward entry after navigate")
	}
}

func TestNavigateToSameURL(t *testing.T) {
	// Re-entering the current address appends a second entry; there is
	// no dedup.
	tab := NewTab("https://a.com")
	tab.NavigateTo("https://a.com")

	want := []string{"https://a.com", "https://a.com"}
	if !reflect.DeepEqual(tab.History, want) {
		t.Errorf("History = %v, want %v", tab.History, want)
	}
	if tab.HistoryIndex != 1 {
		t.Errorf("HistoryIndex = %d, want 1", tab.HistoryIndex)
	}
	if !tab.CanGoBack() {
		t.Error("duplicate entry should still allow going back")
	}
}

func TestBackForward(t *testing.T) {
	tab := NewTab("https://a.com")
	tab.NavigateTo("https://b.com")
	tab.NavigateTo("https://c.com")

	if !tab.GoBack() {
		t.Fatal("GoBack should succeed from index 2")
	}
	if tab.URL != "https://b.com" || tab.HistoryIndex != 1 {
		t.Errorf("after back: url=%q idx=%d, want b.com/1", tab.URL, tab.HistoryIndex)
	}
	if !tab.Loading {
		t.Error("GoBack should set loading")
	}

	if !tab.GoBack() {
		t.Fatal("GoBack should succeed from index 1")
	}
	if tab.URL != "https://a.com" || tab.HistoryIndex != 0 {
		t.Errorf("after back: url=%q idx=%d, want a.com/0", tab.URL, tab.HistoryIndex)
	}
	if tab.GoBack() {
		t.Error("GoBack at the oldest entry should fail")
	}

	if !tab.GoForward() {
		t.Fatal("GoForward should succeed from index 0")
	}
	if tab.URL != "https://b.com" || tab.HistoryIndex != 1 {
		t.Errorf("after forward: url=%q idx=%d, want b.com/1", tab.URL, tab.HistoryIndex)
	}
	if !tab.GoForward() {
		t.Fatal("GoForward should succeed from index 1")
	}
	if tab.GoForward() {
		t.Error("GoForward at the newest entry should fail")
	}
	if len(tab.History) != 3 {
		t.Errorf("back/forward must not change history length, got %d", len(tab.History))
	}
}

func TestNavigateTruncatesForwardBranch(t *testing.T) {
	tab := NewTab("https://a.com")
	tab.NavigateTo("https://b.com")
	tab.NavigateTo("https://c.com")
	tab.GoBack()

	tab.NavigateTo("https://d.com")

	want := []string{"https://a.com", "https://b.com", "https://d.com"}
	if !reflect.DeepEqual(tab.History, want) {
		t.Errorf("History = %v, want %v (c.com discarded)", tab.History, want)
	}
	if tab.HistoryIndex != 2 {
		t.Errorf("HistoryIndex = %d, want 2", tab.HistoryIndex)
	}
	if tab.CanGoForward() {
		t.Error("forward branch should be gone after navigate")
	}
}

func TestGoBackFailureLeavesStateUntouched(t *testing.T) {
	tab := NewTab("https://a.com")
	tab.FinishLoading()

	historyBefore := append([]string(nil), tab.History...)
	urlBefore := tab.URL
	idxBefore := tab.HistoryIndex

	if tab.GoBack() {
		t.Fatal("GoBack with a single entry should fail")
	}
	if !reflect.DeepEqual(tab.History, historyBefore) {
		t.Errorf("History changed on failed GoBack: %v", tab.History)
	}
	if tab.URL != urlBefore || tab.HistoryIndex != idxBefore {
		t.Errorf("cursor state changed on failed GoBack: url=%q idx=%d", tab.URL, tab.HistoryIndex)
	}
	if tab.Loading {
		t.Error("failed GoBack must not set loading")
	}
}

func TestReloadAndFinishLoading(t *testing.T) {
	tab := NewTab("https://a.com")

	tab.Reload()
	if !tab.Loading {
		t.Error("Reload should set loading")
	}
	if len(tab.History) != 1 || tab.URL != "https://a.com" {
		t.Error("Reload must not touch history or URL")
	}

	tab.FinishLoading()
	if tab.Loading {
		t.Error("FinishLoading should clear loading")
	}
}

func TestDisplayTitle(t *testing.T) {
	tab := NewTab("https://a.com")

	if got := tab.DisplayTitle(); got != "https://a.com" {
		t.Errorf("placeholder title: DisplayTitle = %q, want the URL", got)
	}

	tab.SetTitle("")
	if got := tab.DisplayTitle(); got != "https://a.com" {
		t.Errorf("empty title: DisplayTitle = %q, want the URL", got)
	}

	tab.SetTitle("Example Domain")
	if got := tab.DisplayTitle(); got != "Example Domain" {
		t.Errorf("DisplayTitle = %q, want Example Domain", got)
	}
}

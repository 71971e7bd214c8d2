package export

import (
	"strings"
	"testing"
	"time"

	"github.com/lotas/blattwerk/internal/types"
)

func TestMarkdown_NamedSession(t *testing.T) {
	s := &types.Session{
		Name:        "research",
		Profile:     "default",
		SavedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ActiveIndex: 0,
		Tabs: []types.SessionTab{
			{
				URL:          "https://go.dev/doc",
				Title:        "Go docs",
				History:      []string{"https://go.dev", "https://go.dev/doc"},
				HistoryIndex: 1,
			},
			{
				URL:          "https://example.com",
				Title:        "Example",
				History:      []string{"https://example.com"},
				HistoryIndex: 0,
			},
		},
	}

	result := Markdown(s)

	if !strings.Contains(result, "# Browsing Session — research") {
		t.Errorf("missing header, got:\n%s", result)
	}
	if !strings.Contains(result, "2026-03-14 09:30") {
		t.Errorf("missing saved-at timestamp, got:\n%s", result)
	}
	if !strings.Contains(result, "2 tabs") {
		t.Errorf("missing tab count, got:\n%s", result)
	}
	if !strings.Contains(result, "[Go docs](https://go.dev/doc) *(active)*") {
		t.Errorf("missing active marker on first tab, got:\n%s", result)
	}
	if !strings.Contains(result, "1 back, 0 forward") {
		t.Errorf("missing history annotation, got:\n%s", result)
	}
	if strings.Contains(result, "[Example](https://example.com) *(active)*") {
		t.Errorf("active marker on wrong tab, got:\n%s", result)
	}
}

func TestMarkdown_UnnamedFallsBackToProfile(t *testing.T) {
	s := &types.Session{
		Profile: "work",
		SavedAt: time.Now(),
		Tabs: []types.SessionTab{
			{URL: "https://example.com", Title: "Example", History: []string{"https://example.com"}},
		},
	}

	result := Markdown(s)

	if !strings.Contains(result, "# Browsing Session — work") {
		t.Errorf("expected profile name in header, got:\n%s", result)
	}
}

func TestMarkdown_TitleFallbackToURL(t *testing.T) {
	s := &types.Session{
		Profile: "test",
		SavedAt: time.Now(),
		Tabs: []types.SessionTab{
			{URL: "https://notitle.com/page", Title: "", History: []string{"https://notitle.com/page"}},
		},
	}

	result := Markdown(s)

	if !strings.Contains(result, "[https://notitle.com/page](https://notitle.com/page)") {
		t.Errorf("expected URL as title fallback, got:\n%s", result)
	}
}

func TestMarkdown_SingularTabCount(t *testing.T) {
	s := &types.Session{
		Profile: "test",
		SavedAt: time.Now(),
		Tabs: []types.SessionTab{
			{URL: "https://one.com", Title: "One", History: []string{"https://one.com"}},
		},
	}

	result := Markdown(s)

	if !strings.Contains(result, "1 tab\n") {
		t.Errorf("expected singular 'tab' not 'tabs', got:\n%s", result)
	}
}

func TestMarkdown_NoAnnotationForFreshTab(t *testing.T) {
	s := &types.Session{
		Profile: "test",
		SavedAt: time.Now(),
		Tabs: []types.SessionTab{
			{URL: "https://a.com", Title: "A", History: []string{"https://a.com"}},
		},
	}

	result := Markdown(s)

	if strings.Contains(result, "back,") {
		t.Errorf("expected no history annotation for single-entry tab, got:\n%s", result)
	}
}

func TestBookmarksMarkdown(t *testing.T) {
	now := time.Now()
	list := []types.Bookmark{
		{URL: "https://a.com", Title: "days", CreatedAt: now.Add(-3 * 24 * time.Hour)},
		{URL: "https://b.com", Title: "hours", CreatedAt: now.Add(-5 * time.Hour)},
		{URL: "https://c.com", Title: "minutes", CreatedAt: now.Add(-30 * time.Minute)},
		{URL: "https://d.com", Title: "", CreatedAt: now},
	}

	result := BookmarksMarkdown(list)

	if !strings.Contains(result, "# Bookmarks") {
		t.Errorf("missing header, got:\n%s", result)
	}
	if !strings.Contains(result, "4 bookmarks") {
		t.Errorf("missing count, got:\n%s", result)
	}
	if !strings.Contains(result, "3d ago") {
		t.Errorf("expected '3d ago' for 3-day-old bookmark, got:\n%s", result)
	}
	if !strings.Contains(result, "5h ago") {
		t.Errorf("expected '5h ago' for 5-hour-old bookmark, got:\n%s", result)
	}
	if !strings.Contains(result, "30m ago") {
		t.Errorf("expected '30m ago' for 30-min-old bookmark, got:\n%s", result)
	}
	if !strings.Contains(result, "just now") {
		t.Errorf("expected 'just now' for fresh bookmark, got:\n%s", result)
	}
	if !strings.Contains(result, "[https://d.com](https://d.com)") {
		t.Errorf("expected URL as title fallback, got:\n%s", result)
	}
}

func TestBookmarksMarkdown_Singular(t *testing.T) {
	list := []types.Bookmark{
		{URL: "https://one.com", Title: "One", CreatedAt: time.Now()},
	}

	result := BookmarksMarkdown(list)

	if !strings.Contains(result, "1 bookmark\n") {
		t.Errorf("expected singular 'bookmark', got:\n%s", result)
	}
}

func TestRender_PreservesContent(t *testing.T) {
	out := Render("# Heading\n\nplain body text\n", 80)

	if out == "" {
		t.Fatalf("expected rendered output")
	}
	if !strings.Contains(out, "plain body text") {
		t.Errorf("expected body text to survive rendering, got:\n%s", out)
	}
}

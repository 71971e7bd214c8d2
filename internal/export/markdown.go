// Package export renders sessions and bookmarks as JSON or Markdown for
// piping into other tools.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotas/blattwerk/internal/types"
)

// Markdown formats a session as a Markdown document.
func Markdown(s *types.Session) string {
	var b strings.Builder

	name := s.Name
	if name == "" {
		name = s.Profile
	}
	n := len(s.Tabs)
	noun := "tabs"
	if n == 1 {
		noun = "tab"
	}
	fmt.Fprintf(&b, "# Browsing Session — %s\n", name)
	fmt.Fprintf(&b, "> Saved %s, %d %s\n\n", s.SavedAt.Format("2006-01-02 15:04"), n, noun)

	for i, tab := range s.Tabs {
		title := tab.Title
		if title == "" {
			title = tab.URL
		}
		fmt.Fprintf(&b, "- [%s](%s)", title, tab.URL)
		if i == s.ActiveIndex {
			b.WriteString(" *(active)*")
		}
		back := tab.HistoryIndex
		forward := len(tab.History) - 1 - tab.HistoryIndex
		if back > 0 || forward > 0 {
			fmt.Fprintf(&b, " — %d back, %d forward", back, forward)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// BookmarksMarkdown formats a bookmark list as a Markdown document.
func BookmarksMarkdown(list []types.Bookmark) string {
	var b strings.Builder

	n := len(list)
	noun := "bookmarks"
	if n == 1 {
		noun = "bookmark"
	}
	fmt.Fprintf(&b, "# Bookmarks\n")
	fmt.Fprintf(&b, "> %d %s\n\n", n, noun)

	for _, bm := range list {
		title := bm.Title
		if title == "" {
			title = bm.URL
		}
		fmt.Fprintf(&b, "- [%s](%s) — added %s\n", title, bm.URL, relativeTime(bm.CreatedAt))
	}

	return b.String()
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

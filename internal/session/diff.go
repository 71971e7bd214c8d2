package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lotas/blattwerk/internal/types"
)

// DiffEntry is one opened or closed tab in a diff result.
type DiffEntry struct {
	ID    string
	URL   string
	Title string
}

// Navigation is a tab present in both sessions whose current URL moved.
type Navigation struct {
	ID    string
	Title string
	From  string
	To    string
}

// DiffResult holds the comparison of two sessions.
type DiffResult struct {
	From      string
	To        string
	Opened    []DiffEntry  // in to but not in from
	Closed    []DiffEntry  // in from but not in to
	Navigated []Navigation // in both, current URL changed
}

// Diff compares two sessions tab by tab. Tabs are matched by ID, so a
// tab that navigated between the two captures reports as one navigation
// rather than a close plus an open, and two tabs on the same URL stay
// distinct. A tab with no ID cannot be matched and counts as closed on
// one side and opened on the other. Buckets come back sorted by URL so
// output is stable.
func Diff(from, to *types.Session) *DiffResult {
	fromByID := make(map[string]types.SessionTab, len(from.Tabs))
	for _, tab := range from.Tabs {
		if tab.ID != "" {
			fromByID[tab.ID] = tab
		}
	}
	toByID := make(map[string]types.SessionTab, len(to.Tabs))
	for _, tab := range to.Tabs {
		if tab.ID != "" {
			toByID[tab.ID] = tab
		}
	}

	result := &DiffResult{
		From: describe(from),
		To:   describe(to),
	}

	for _, tab := range to.Tabs {
		if prev, ok := fromByID[tab.ID]; tab.ID != "" && ok {
			if prev.URL != tab.URL {
				result.Navigated = append(result.Navigated, Navigation{
					ID:    tab.ID,
					Title: tab.Title,
					From:  prev.URL,
					To:    tab.URL,
				})
			}
			continue
		}
		result.Opened = append(result.Opened, DiffEntry{ID: tab.ID, URL: tab.URL, Title: tab.Title})
	}

	for _, tab := range from.Tabs {
		if _, ok := toByID[tab.ID]; tab.ID != "" && ok {
			continue
		}
		result.Closed = append(result.Closed, DiffEntry{ID: tab.ID, URL: tab.URL, Title: tab.Title})
	}

	sort.Slice(result.Opened, func(i, j int) bool { return result.Opened[i].URL < result.Opened[j].URL })
	sort.Slice(result.Closed, func(i, j int) bool { return result.Closed[i].URL < result.Closed[j].URL })
	sort.Slice(result.Navigated, func(i, j int) bool { return result.Navigated[i].To < result.Navigated[j].To })
	return result
}

func describe(s *types.Session) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("unnamed (%d tabs)", len(s.Tabs))
}

// FormatDiff returns a human-readable string representation of a DiffResult.
func FormatDiff(d *DiffResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Diff %s -> %s\n", d.From, d.To)
	fmt.Fprintf(&sb, "Opened: %d  Closed: %d  Navigated: %d\n",
		len(d.Opened), len(d.Closed), len(d.Navigated))

	if len(d.Opened) > 0 {
		sb.WriteString("\n+ Opened:\n")
		for _, e := range d.Opened {
			fmt.Fprintf(&sb, "  + %s\n", e.URL)
		}
	}

	if len(d.Closed) > 0 {
		sb.WriteString("\n- Closed:\n")
		for _, e := range d.Closed {
			fmt.Fprintf(&sb, "  - %s\n", e.URL)
		}
	}

	if len(d.Navigated) > 0 {
		sb.WriteString("\n~ Navigated:\n")
		for _, n := range d.Navigated {
			fmt.Fprintf(&sb, "  ~ %s -> %s\n", n.From, n.To)
		}
	}

	if len(d.Opened) == 0 && len(d.Closed) == 0 && len(d.Navigated) == 0 {
		sb.WriteString("\nNo changes.\n")
	}

	return sb.String()
}

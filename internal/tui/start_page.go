package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/blattwerk/internal/fetch"
	"github.com/lotas/blattwerk/internal/storage"
	"github.com/lotas/blattwerk/internal/types"
)

// renderStartPage builds the about:home pane from profile data alone.
// It never fetches anything.
func renderStartPage(bookmarks int, top []storage.SiteCount, recent []types.Visit) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	headStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("blattwerk") + "\n")
	b.WriteString(dimStyle.Render("a text-mode browser") + "\n\n")

	if bookmarks == 1 {
		b.WriteString("1 bookmark saved\n\n")
	} else {
		b.WriteString(fmt.Sprintf("%d bookmarks saved\n\n", bookmarks))
	}

	if len(top) > 0 {
		b.WriteString(headStyle.Render("Top sites") + "\n")
		for i, s := range top {
			label := s.Title
			if label == "" {
				label = s.URL
			}
			b.WriteString(fmt.Sprintf("  %d. %s ", i+1, truncate(label, 48)))
			b.WriteString(dimStyle.Render(fmt.Sprintf("(%d visits)", s.Visits)) + "\n")
		}
		b.WriteString("\n")
	}

	if len(recent) > 0 {
		b.WriteString(headStyle.Render("Recently visited") + "\n")
		for _, v := range recent {
			label := v.Title
			if label == "" {
				label = v.URL
			}
			b.WriteString("  " + truncate(label, 48) + " " + dimStyle.Render(truncate(v.URL, 40)) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("o address · B bookmarks · H history · ? help"))
	return b.String()
}

// startPageLinks exposes the start page's sites to the link picker so
// L works on about:home too.
func startPageLinks(top []storage.SiteCount, recent []types.Visit) []fetch.Link {
	links := make([]fetch.Link, 0, len(top)+len(recent))
	seen := make(map[string]bool)
	for _, s := range top {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		text := s.Title
		if text == "" {
			text = s.URL
		}
		links = append(links, fetch.Link{Text: text, URL: s.URL})
	}
	for _, v := range recent {
		if seen[v.URL] {
			continue
		}
		seen[v.URL] = true
		text := v.Title
		if text == "" {
			text = v.URL
		}
		links = append(links, fetch.Link{Text: text, URL: v.URL})
	}
	return links
}

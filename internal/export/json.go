package export

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/lotas/blattwerk/internal/types"
)

type jsonExport struct {
	Session    string    `json:"session,omitempty"`
	Profile    string    `json:"profile"`
	SavedAt    time.Time `json:"saved_at"`
	ExportedAt time.Time `json:"exported_at"`
	ActiveTab  int       `json:"active_tab"`
	Tabs       []jsonTab `json:"tabs"`
}

type jsonTab struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Domain       string   `json:"domain"`
	History      []string `json:"history"`
	HistoryIndex int      `json:"history_index"`
	CanGoBack    bool     `json:"can_go_back"`
	CanGoForward bool     `json:"can_go_forward"`
}

// JSON formats a session as a JSON document.
func JSON(s *types.Session) (string, error) {
	out := jsonExport{
		Session:    s.Name,
		Profile:    s.Profile,
		SavedAt:    s.SavedAt,
		ExportedAt: time.Now(),
		ActiveTab:  s.ActiveIndex,
		Tabs:       make([]jsonTab, 0, len(s.Tabs)),
	}

	for _, tab := range s.Tabs {
		out.Tabs = append(out.Tabs, jsonTab{
			Title:        tab.Title,
			URL:          tab.URL,
			Domain:       extractDomain(tab.URL),
			History:      tab.History,
			HistoryIndex: tab.HistoryIndex,
			CanGoBack:    tab.HistoryIndex > 0,
			CanGoForward: tab.HistoryIndex < len(tab.History)-1,
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

type jsonBookmark struct {
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Domain  string    `json:"domain"`
	AddedAt time.Time `json:"added_at"`
}

// BookmarksJSON formats a bookmark list as a JSON document.
func BookmarksJSON(list []types.Bookmark) (string, error) {
	out := make([]jsonBookmark, 0, len(list))
	for _, b := range list {
		out = append(out, jsonBookmark{
			Title:   b.Title,
			URL:     b.URL,
			Domain:  extractDomain(b.URL),
			AddedAt: b.CreatedAt,
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}

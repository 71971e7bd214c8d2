// Package tabs holds the browsing state: per-tab history stacks with a
// cursor, and the ordered tab collection with its active index. It does
// no I/O and does not persist itself; callers own the single writer.
package tabs

import "github.com/google/uuid"

// NewTabTitle is the placeholder title a tab carries until a page
// reports a real one. DisplayTitle treats it as absent.
const NewTabTitle = "New Tab"

// Tab is one browsing context. History is never empty and
// History[HistoryIndex] == URL holds after every operation.
type Tab struct {
	ID           string
	URL          string
	Title        string
	History      []string
	HistoryIndex int
	Loading      bool
}

// NewTab creates a tab pointed at url, with url as the sole history
// entry.
func NewTab(url string) *Tab {
	return &Tab{
		ID:      uuid.NewString(),
		URL:     url,
		Title:   NewTabTitle,
		History: []string{url},
	}
}

// NavigateTo makes url the current entry. Forward entries beyond the
// cursor are discarded first, then url is appended and the cursor moves
// to it. Navigating to the URL already shown still appends an entry.
func (t *Tab) NavigateTo(url string) {
	if t.HistoryIndex < len(t.History)-1 {
		t.History = t.History[:t.HistoryIndex+1]
	}
	t.History = append(t.History, url)
	t.HistoryIndex = len(t.History) - 1
	t.URL = url
	t.Loading = true
}

// GoBack moves the cursor one entry back. It reports false, changing
// nothing, when already at the oldest entry.
func (t *Tab) GoBack() bool {
	if t.HistoryIndex <= 0 {
		return false
	}
	t.HistoryIndex--
	t.URL = t.History[t.HistoryIndex]
	t.Loading = true
	return true
}

// GoForward moves the cursor one entry forward. It reports false,
// changing nothing, when already at the newest entry.
func (t *Tab) GoForward() bool {
	if t.HistoryIndex >= len(t.History)-1 {
		return false
	}
	t.HistoryIndex++
	t.URL = t.History[t.HistoryIndex]
	t.Loading = true
	return true
}

// CanGoBack reports whether GoBack would succeed.
func (t *Tab) CanGoBack() bool {
	return t.HistoryIndex > 0
}

// CanGoForward reports whether GoForward would succeed.
func (t *Tab) CanGoForward() bool {
	return t.HistoryIndex < len(t.History)-1
}

// Reload marks the tab loading again. History and URL are untouched.
func (t *Tab) Reload() {
	t.Loading = true
}

// FinishLoading clears the loading flag. Nothing else clears it; the
// fetch layer is expected to call this on completion.
func (t *Tab) FinishLoading() {
	t.Loading = false
}

// SetTitle sets the display title.
func (t *Tab) SetTitle(title string) {
	t.Title = title
}

// DisplayTitle returns the title, falling back to the URL while the
// title is empty or still the placeholder.
func (t *Tab) DisplayTitle() string {
	if t.Title == "" || t.Title == NewTabTitle {
		return t.URL
	}
	return t.Title
}

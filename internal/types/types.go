package types

import "time"

// SessionTab is one tab's full navigation state as carried between the
// live manager, the session store, and the file codec.
type SessionTab struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	History      []string `json:"history"`
	HistoryIndex int      `json:"history_index"`
}

// Session is a point-in-time capture of every open tab and which one
// was active.
type Session struct {
	Name        string       `json:"name,omitempty"`
	Profile     string       `json:"profile,omitempty"`
	SavedAt     time.Time    `json:"saved_at"`
	ActiveIndex int          `json:"active_index"`
	Tabs        []SessionTab `json:"tabs"`
}

// SessionMeta holds the listing metadata for a stored session.
type SessionMeta struct {
	ID       int64
	Name     string
	Profile  string
	SavedAt  time.Time
	TabCount int
}

// Bookmark is a saved page.
type Bookmark struct {
	ID        int64
	URL       string
	Title     string
	CreatedAt time.Time
}

// Visit is one entry in the global browsing log. TabID records which
// tab made the visit; it is informational only.
type Visit struct {
	ID        int64
	URL       string
	Title     string
	TabID     string
	VisitedAt time.Time
}

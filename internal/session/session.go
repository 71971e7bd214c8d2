// Package session captures the live browsing state for persistence and
// rebuilds it on restore, repairing anything a stale or hand-edited
// session file got wrong.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotas/blattwerk/internal/tabs"
	"github.com/lotas/blattwerk/internal/types"
)

// Capture freezes the manager's current state into a session.
func Capture(m *tabs.Manager, profile, name string) *types.Session {
	s := &types.Session{
		Name:        name,
		Profile:     profile,
		SavedAt:     time.Now().UTC(),
		ActiveIndex: m.ActiveIndex(),
	}
	for _, t := range m.Tabs() {
		history := make([]string, len(t.History))
		copy(history, t.History)
		s.Tabs = append(s.Tabs, types.SessionTab{
			ID:           t.ID,
			URL:          t.URL,
			Title:        t.Title,
			History:      history,
			HistoryIndex: t.HistoryIndex,
		})
	}
	return s
}

// Restore rebuilds a tab manager from a saved session. Damaged entries
// are repaired rather than rejected: a tab with no history gets a
// single-entry stack, an out-of-range cursor is clamped, a missing ID
// is regenerated, and a session with no tabs at all falls back to a
// single tab on home.
func Restore(s *types.Session, home string) *tabs.Manager {
	if s == nil || len(s.Tabs) == 0 {
		return tabs.NewManager(home)
	}

	restored := make([]*tabs.Tab, 0, len(s.Tabs))
	for _, st := range s.Tabs {
		t := &tabs.Tab{
			ID:           st.ID,
			URL:          st.URL,
			Title:        st.Title,
			History:      append([]string(nil), st.History...),
			HistoryIndex: st.HistoryIndex,
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Title == "" {
			t.Title = tabs.NewTabTitle
		}
		if len(t.History) == 0 {
			if t.URL == "" {
				t.URL = home
			}
			t.History = []string{t.URL}
			t.HistoryIndex = 0
		}
		if t.HistoryIndex < 0 {
			t.HistoryIndex = 0
		}
		if t.HistoryIndex >= len(t.History) {
			t.HistoryIndex = len(t.History) - 1
		}
		// URL always mirrors the history cursor.
		t.URL = t.History[t.HistoryIndex]
		restored = append(restored, t)
	}

	active := s.ActiveIndex
	if active < 0 {
		active = 0
	}
	if active >= len(restored) {
		active = len(restored) - 1
	}

	return tabs.Rebuild(restored, active)
}

package tabs

// Manager owns the ordered tab collection and the active index. The
// collection is never empty: construction creates one tab and CloseTab
// refuses to remove the last one. 0 <= active < len(tabs) holds after
// every operation.
type Manager struct {
	tabs   []*Tab
	active int
}

// NewManager creates a manager with a single tab at home.
func NewManager(home string) *Manager {
	return &Manager{tabs: []*Tab{NewTab(home)}}
}

// Rebuild constructs a manager around already-built tabs, for session
// restore. tabs must be non-empty and active in range; callers sanitize
// first.
func Rebuild(tabs []*Tab, active int) *Manager {
	return &Manager{tabs: tabs, active: active}
}

// Tabs returns the tabs in display order. The returned slice must not
// be modified.
func (m *Manager) Tabs() []*Tab {
	return m.tabs
}

// ActiveTab returns the tab at the active index, which is always in
// bounds.
func (m *Manager) ActiveTab() *Tab {
	return m.tabs[m.active]
}

// ActiveIndex returns the index of the active tab.
func (m *Manager) ActiveIndex() int {
	return m.active
}

// Count returns the number of open tabs.
func (m *Manager) Count() int {
	return len(m.tabs)
}

// NewTab opens a tab at url, appends it, and makes it active.
func (m *Manager) NewTab(url string) *Tab {
	t := NewTab(url)
	m.tabs = append(m.tabs, t)
	m.active = len(m.tabs) - 1
	return t
}

// CloseTab removes the tab at i. It reports false, changing nothing,
// when i is out of bounds or only one tab remains.
func (m *Manager) CloseTab(i int) bool {
	if len(m.tabs) <= 1 {
		return false
	}
	if i < 0 || i >= len(m.tabs) {
		return false
	}
	m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
	m.active = activeAfterClose(m.active, i, len(m.tabs))
	return true
}

// activeAfterClose re-derives the active index after the tab at removed
// was deleted; count is the post-removal length, always >= 1. Every
// structural removal goes through here.
//
// The branch order matters: an active index that fell off the end is
// clamped; otherwise removing the active tab or one to its left shifts
// the index down so the same tab stays active.
func activeAfterClose(active, removed, count int) int {
	switch {
	case active >= count:
		return count - 1
	case removed <= active && active > 0:
		return active - 1
	default:
		return active
	}
}

// SwitchTo makes the tab at i active. It reports false, changing
// nothing, when i is out of bounds.
func (m *Manager) SwitchTo(i int) bool {
	if i < 0 || i >= len(m.tabs) {
		return false
	}
	m.active = i
	return true
}

// PendingClose is a single-slot close request. The UI records the
// intent during a render pass and the frame loop applies it once
// between passes, so the tab slice is never mutated mid-iteration.
// A second Request before Apply replaces the first.
type PendingClose struct {
	index int
	set   bool
}

// Request records i as the tab to close at the next apply step.
func (p *PendingClose) Request(i int) {
	p.index = i
	p.set = true
}

// Pending reports whether a request is waiting.
func (p *PendingClose) Pending() bool {
	return p.set
}

// Apply consumes the held request against m, reporting whether a tab
// was closed. With no request held it does nothing.
func (p *PendingClose) Apply(m *Manager) bool {
	if !p.set {
		return false
	}
	p.set = false
	return m.CloseTab(p.index)
}

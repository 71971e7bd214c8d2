// Package tui is the interactive browser: a bubbletea program owning
// the tab strip, address bar, content pane, and the overlays for
// bookmarks, history, and page links. All tab mutation happens inside
// the update loop, including commands arriving over the control
// server, so the manager needs no locking.
package tui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/blattwerk/internal/applog"
	"github.com/lotas/blattwerk/internal/fetch"
	"github.com/lotas/blattwerk/internal/search"
	"github.com/lotas/blattwerk/internal/server"
	"github.com/lotas/blattwerk/internal/session"
	"github.com/lotas/blattwerk/internal/settings"
	"github.com/lotas/blattwerk/internal/storage"
	"github.com/lotas/blattwerk/internal/tabs"
	"github.com/lotas/blattwerk/internal/types"
)

const homeURL = "about:home"

// chromeLines is what the tab bar, address line, and (when shown) the
// status bar take from the terminal height.
func (m Model) chromeLines() int {
	if m.settings.Appearance.ShowStatusBar {
		return 3
	}
	return 2
}

// --- Messages ---

type pageLoadedMsg struct {
	tabID string
	page  *fetch.Page
}

type pageErrorMsg struct {
	tabID string
	url   string
	err   error
}

type startPageMsg struct {
	tabID   string
	content string
	links   []fetch.Link
}

type bookmarksLoadedMsg struct {
	items []pickerItem
	err   error
}

type historyLoadedMsg struct {
	items []pickerItem
	err   error
}

type bookmarkToggledMsg struct {
	url   string
	added bool
	err   error
}

type sessionSavedMsg struct {
	tabCount int
	err      error
}

// Messages from the control server
type controlMsg struct{ cmd server.Command }
type controlClosedMsg struct{}

// uiMode says which surface owns the keyboard.
type uiMode int

const (
	modeBrowse uiMode = iota
	modeAddress
	modeBookmarks
	modeHistory
	modeLinks
	modeHelp
)

// tabContent is the rendered state of one tab's current page, keyed
// by tab ID so a fetch finishing after its tab closed has nowhere to
// land.
type tabContent struct {
	text  string
	links []fetch.Link
}

// --- Model ---

type Model struct {
	// Data
	manager  *tabs.Manager
	pending  tabs.PendingClose
	settings settings.Settings
	profile  string
	db       *sql.DB
	fetcher  *fetch.Client

	// UI state
	mode    uiMode
	address textinput.Model
	content viewport.Model
	ready   bool
	pages   map[string]tabContent
	picker  Picker
	status  string
	width   int
	height  int

	// Control server, nil unless listening
	server *server.Server
}

// NewModel wires the browser UI around an existing tab manager. db and
// srv may be nil: without db the bookmark, history, and session keys
// degrade to a status message; without srv no control endpoint runs.
func NewModel(manager *tabs.Manager, st settings.Settings, profile string, db *sql.DB, srv *server.Server) Model {
	ti := textinput.New()
	ti.Placeholder = "search or enter address"
	ti.Prompt = "> "
	ti.CharLimit = 512

	return Model{
		manager:  manager,
		settings: st,
		profile:  profile,
		db:       db,
		fetcher:  fetch.NewClient(time.Duration(st.Advanced.FetchTimeoutSeconds)*time.Second, st.Advanced.UserAgent),
		address:  ti,
		pages:    make(map[string]tabContent),
		server:   srv,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.ensureContent(m.manager.ActiveTab())}
	if m.server != nil {
		cmds = append(cmds, startControlServer(m.server), listenControl(m.server))
	}
	return tea.Batch(cmds...)
}

// --- Commands ---

func fetchPage(c *fetch.Client, tabID, url string) tea.Cmd {
	return func() tea.Msg {
		page, err := c.Page(context.Background(), url)
		if err != nil {
			return pageErrorMsg{tabID: tabID, url: url, err: err}
		}
		return pageLoadedMsg{tabID: tabID, page: page}
	}
}

func loadStartPage(db *sql.DB, tabID string) tea.Cmd {
	return func() tea.Msg {
		var (
			bookmarks int
			top       []storage.SiteCount
			recent    []types.Visit
		)
		if db != nil {
			if list, err := storage.ListBookmarks(db); err == nil {
				bookmarks = len(list)
			}
			top, _ = storage.TopSites(db, 5)
			recent, _ = storage.ListVisits(db, 5)
		}
		return startPageMsg{
			tabID:   tabID,
			content: renderStartPage(bookmarks, top, recent),
			links:   startPageLinks(top, recent),
		}
	}
}

func loadBookmarks(db *sql.DB) tea.Cmd {
	return func() tea.Msg {
		list, err := storage.ListBookmarks(db)
		if err != nil {
			return bookmarksLoadedMsg{err: err}
		}
		items := make([]pickerItem, 0, len(list))
		for _, bm := range list {
			label := bm.Title
			if label == "" {
				label = bm.URL
			}
			items = append(items, pickerItem{label: label, detail: bm.URL, url: bm.URL})
		}
		return bookmarksLoadedMsg{items: items}
	}
}

func loadHistory(db *sql.DB) tea.Cmd {
	return func() tea.Msg {
		visits, err := storage.ListVisits(db, 30)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		items := make([]pickerItem, 0, len(visits))
		for _, v := range visits {
			label := v.Title
			if label == "" {
				label = v.URL
			}
			items = append(items, pickerItem{label: label, detail: v.URL, url: v.URL})
		}
		return historyLoadedMsg{items: items}
	}
}

func toggleBookmark(db *sql.DB, url, title string) tea.Cmd {
	return func() tea.Msg {
		marked, err := storage.IsBookmarked(db, url)
		if err != nil {
			return bookmarkToggledMsg{err: err}
		}
		if marked {
			if err := storage.DeleteBookmarkByURL(db, url); err != nil {
				return bookmarkToggledMsg{err: err}
			}
			return bookmarkToggledMsg{url: url, added: false}
		}
		if _, err := storage.AddBookmark(db, url, title); err != nil {
			return bookmarkToggledMsg{err: err}
		}
		return bookmarkToggledMsg{url: url, added: true}
	}
}

func saveSession(db *sql.DB, s *types.Session) tea.Cmd {
	return func() tea.Msg {
		if _, err := storage.SaveSession(db, s); err != nil {
			return sessionSavedMsg{err: err}
		}
		return sessionSavedMsg{tabCount: len(s.Tabs)}
	}
}

func logVisit(db *sql.DB, url, title, tabID string) tea.Cmd {
	return func() tea.Msg {
		if err := storage.AddVisit(db, url, title, tabID); err != nil {
			applog.Error("visit.record", err, "url", url)
		}
		return nil
	}
}

func startControlServer(srv *server.Server) tea.Cmd {
	return func() tea.Msg {
		srv.ListenAndServe(context.Background())
		return controlClosedMsg{}
	}
}

func listenControl(srv *server.Server) tea.Cmd {
	return func() tea.Msg {
		cmd, ok := <-srv.Commands()
		if !ok {
			return controlClosedMsg{}
		}
		return controlMsg{cmd: cmd}
	}
}

// pushState mirrors the manager to the control client after anything
// changes it. Safe to call with no server or no client connected.
func (m Model) pushState() tea.Cmd {
	if m.server == nil {
		return nil
	}
	srv := m.server
	st := server.StateFrom(m.manager)
	return func() tea.Msg {
		srv.SendState(st)
		return nil
	}
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.address.Width = m.width - 4
		m.picker.Width = m.width
		m.picker.Height = m.height
		paneHeight := m.height - m.chromeLines()
		if paneHeight < 1 {
			paneHeight = 1
		}
		if !m.ready {
			m.content = viewport.New(m.width, paneHeight)
			m.ready = true
		} else {
			m.content.Width = m.width
			m.content.Height = paneHeight
		}
		m.syncViewport()

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case pageLoadedMsg:
		m, cmd = m.handlePageLoaded(msg)

	case pageErrorMsg:
		t := m.findTab(msg.tabID)
		if t == nil || t.URL != msg.url {
			break
		}
		t.FinishLoading()
		m.pages[t.ID] = tabContent{text: "Could not load " + msg.url + "\n\n" + msg.err.Error()}
		m.status = "load failed"
		if t.ID == m.manager.ActiveTab().ID {
			m.syncViewport()
			m.content.GotoTop()
		}

	case startPageMsg:
		t := m.findTab(msg.tabID)
		if t == nil || t.URL != homeURL {
			break
		}
		m.pages[t.ID] = tabContent{text: msg.content, links: msg.links}
		if t.ID == m.manager.ActiveTab().ID {
			m.syncViewport()
			m.content.GotoTop()
		}

	case bookmarksLoadedMsg:
		if msg.err != nil {
			m.status = "bookmarks: " + msg.err.Error()
			break
		}
		if len(msg.items) == 0 {
			m.status = "no bookmarks yet"
			break
		}
		m.picker = NewPicker("Bookmarks", msg.items)
		m.picker.Width = m.width
		m.picker.Height = m.height
		m.mode = modeBookmarks

	case historyLoadedMsg:
		if msg.err != nil {
			m.status = "history: " + msg.err.Error()
			break
		}
		if len(msg.items) == 0 {
			m.status = "no history yet"
			break
		}
		m.picker = NewPicker("History", msg.items)
		m.picker.Width = m.width
		m.picker.Height = m.height
		m.mode = modeHistory

	case bookmarkToggledMsg:
		switch {
		case msg.err != nil:
			m.status = "bookmark: " + msg.err.Error()
		case msg.added:
			m.status = "bookmarked " + truncate(msg.url, 60)
		default:
			m.status = "removed bookmark " + truncate(msg.url, 60)
		}

	case sessionSavedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else if msg.tabCount == 1 {
			m.status = "session saved (1 tab)"
		} else {
			m.status = fmt.Sprintf("session saved (%d tabs)", msg.tabCount)
		}

	case controlMsg:
		var applied tea.Cmd
		m, applied = m.applyControl(msg.cmd)
		cmds := []tea.Cmd{applied, m.pushState()}
		if m.server != nil {
			cmds = append(cmds, listenControl(m.server))
		}
		cmd = tea.Batch(cmds...)

	case controlClosedMsg:
		m.status = "control server stopped"
	}

	m, cmd = m.applyPendingClose(cmd)
	return m, cmd
}

// applyPendingClose runs at the end of every update pass so a close
// requested while handling a message never mutates the tab slice that
// same pass is still reading.
func (m Model) applyPendingClose(prev tea.Cmd) (Model, tea.Cmd) {
	if !m.pending.Pending() {
		return m, prev
	}
	if !m.pending.Apply(m.manager) {
		if m.manager.Count() == 1 {
			m.status = "cannot close the last tab"
		}
		return m, prev
	}
	m.dropClosedPages()
	m.syncViewport()
	m.content.GotoTop()
	return m, tea.Batch(prev, m.pushState(), m.ensureContent(m.manager.ActiveTab()))
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeAddress:
		return m.handleAddressKey(msg)
	case modeBookmarks, modeHistory, modeLinks:
		return m.handlePickerKey(msg)
	case modeHelp:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.mode = modeBrowse
		return m, nil
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "o", "ctrl+l":
		m.mode = modeAddress
		m.address.SetValue("")
		m.address.Focus()
		return m, textinput.Blink

	case "t", "ctrl+t":
		t := m.manager.NewTab(m.settings.General.Homepage)
		m.syncViewport()
		m.content.GotoTop()
		return m, tea.Batch(m.ensureContent(t), m.pushState())

	case "x", "ctrl+w":
		m.pending.Request(m.manager.ActiveIndex())
		return m, nil

	case "tab":
		m.manager.SwitchTo((m.manager.ActiveIndex() + 1) % m.manager.Count())
		m.syncViewport()
		m.content.GotoTop()
		return m, tea.Batch(m.ensureContent(m.manager.ActiveTab()), m.pushState())

	case "shift+tab":
		n := m.manager.Count()
		m.manager.SwitchTo((m.manager.ActiveIndex() + n - 1) % n)
		m.syncViewport()
		m.content.GotoTop()
		return m, tea.Batch(m.ensureContent(m.manager.ActiveTab()), m.pushState())

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(msg.String()[0]-'0') - 1
		if m.manager.SwitchTo(i) {
			m.syncViewport()
			m.content.GotoTop()
			return m, tea.Batch(m.ensureContent(m.manager.ActiveTab()), m.pushState())
		}
		return m, nil

	case "[", "backspace":
		t := m.manager.ActiveTab()
		if t.GoBack() {
			return m, tea.Batch(m.beginLoad(t), m.pushState())
		}
		m.status = "nothing to go back to"
		return m, nil

	case "]":
		t := m.manager.ActiveTab()
		if t.GoForward() {
			return m, tea.Batch(m.beginLoad(t), m.pushState())
		}
		m.status = "nothing to go forward to"
		return m, nil

	case "r":
		t := m.manager.ActiveTab()
		t.Reload()
		return m, tea.Batch(m.beginLoad(t), m.pushState())

	case "m", "ctrl+d":
		if m.db == nil {
			m.status = "no profile storage"
			return m, nil
		}
		t := m.manager.ActiveTab()
		return m, toggleBookmark(m.db, t.URL, t.DisplayTitle())

	case "B":
		if m.db == nil {
			m.status = "no profile storage"
			return m, nil
		}
		return m, loadBookmarks(m.db)

	case "H":
		if m.db == nil {
			m.status = "no profile storage"
			return m, nil
		}
		return m, loadHistory(m.db)

	case "L":
		c := m.pages[m.manager.ActiveTab().ID]
		if len(c.links) == 0 {
			m.status = "no links on this page"
			return m, nil
		}
		items := make([]pickerItem, 0, len(c.links))
		for _, l := range c.links {
			label := l.Text
			if label == "" {
				label = l.URL
			}
			items = append(items, pickerItem{label: label, detail: l.URL, url: l.URL})
		}
		m.picker = NewPicker("Links", items)
		m.picker.Width = m.width
		m.picker.Height = m.height
		m.mode = modeLinks
		return m, nil

	case "S":
		if m.db == nil {
			m.status = "no profile storage"
			return m, nil
		}
		return m, saveSession(m.db, session.Capture(m.manager, m.profile, ""))

	case "?":
		m.mode = modeHelp
		return m, nil

	case "esc":
		m.status = ""
		return m, nil
	}

	// Everything else scrolls the content pane.
	var cmd tea.Cmd
	m.content, cmd = m.content.Update(msg)
	return m, cmd
}

func (m Model) handleAddressKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		m.address.Blur()
		return m, nil

	case "enter":
		input := strings.TrimSpace(m.address.Value())
		m.mode = modeBrowse
		m.address.Blur()
		if input == "" {
			return m, nil
		}
		url := search.Normalize(input, m.settings.SearchEngine())
		t := m.manager.ActiveTab()
		t.NavigateTo(url)
		m.status = ""
		return m, tea.Batch(m.beginLoad(t), m.pushState())
	}

	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.picker.MoveUp()
	case "down", "j":
		m.picker.MoveDown()
	case "enter":
		item, ok := m.picker.Selected()
		m.mode = modeBrowse
		if !ok {
			return m, nil
		}
		t := m.manager.ActiveTab()
		t.NavigateTo(item.url)
		return m, tea.Batch(m.beginLoad(t), m.pushState())
	case "esc":
		m.mode = modeBrowse
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handlePageLoaded(msg pageLoadedMsg) (Model, tea.Cmd) {
	t := m.findTab(msg.tabID)
	if t == nil || t.URL != msg.page.URL {
		// Tab closed or moved on while the fetch ran.
		return m, nil
	}
	t.FinishLoading()
	if msg.page.Title != "" {
		t.SetTitle(msg.page.Title)
	}
	m.pages[t.ID] = tabContent{text: msg.page.Text, links: msg.page.Links}
	if t.ID == m.manager.ActiveTab().ID {
		m.syncViewport()
		m.content.GotoTop()
	}

	var cmds []tea.Cmd
	if m.db != nil && m.settings.Privacy.SaveHistory {
		cmds = append(cmds, logVisit(m.db, msg.page.URL, msg.page.Title, t.ID))
	}
	cmds = append(cmds, m.pushState())
	return m, tea.Batch(cmds...)
}

// applyControl runs one remote command through the same paths the
// keyboard uses.
func (m Model) applyControl(cmd server.Command) (Model, tea.Cmd) {
	switch cmd.Type {
	case server.CmdNavigate:
		t := m.manager.ActiveTab()
		t.NavigateTo(search.Normalize(cmd.URL, m.settings.SearchEngine()))
		return m, m.beginLoad(t)

	case server.CmdBack:
		t := m.manager.ActiveTab()
		if t.GoBack() {
			return m, m.beginLoad(t)
		}

	case server.CmdForward:
		t := m.manager.ActiveTab()
		if t.GoForward() {
			return m, m.beginLoad(t)
		}

	case server.CmdReload:
		t := m.manager.ActiveTab()
		t.Reload()
		return m, m.beginLoad(t)

	case server.CmdNewTab:
		url := cmd.URL
		if url == "" {
			url = m.settings.General.Homepage
		}
		t := m.manager.NewTab(url)
		m.syncViewport()
		m.content.GotoTop()
		return m, m.ensureContent(t)

	case server.CmdCloseTab:
		i := m.manager.ActiveIndex()
		if cmd.Index != nil {
			i = *cmd.Index
		}
		m.pending.Request(i)

	case server.CmdSwitchTab:
		if cmd.Index != nil && m.manager.SwitchTo(*cmd.Index) {
			m.syncViewport()
			m.content.GotoTop()
			return m, m.ensureContent(m.manager.ActiveTab())
		}
	}
	return m, nil
}

// --- Helpers ---

// beginLoad drops the tab's now-stale page, shows the loading
// placeholder, and schedules the fetch for its current URL.
func (m *Model) beginLoad(t *tabs.Tab) tea.Cmd {
	delete(m.pages, t.ID)
	cmd := m.loadCmd(t)
	m.syncViewport()
	m.content.GotoTop()
	return cmd
}

// ensureContent arranges a load for a tab with no rendered page yet,
// which happens after a session restore and after switching to a tab
// whose fetch never ran.
func (m *Model) ensureContent(t *tabs.Tab) tea.Cmd {
	if _, ok := m.pages[t.ID]; ok {
		return nil
	}
	if t.Loading {
		return nil
	}
	t.Reload()
	cmd := m.loadCmd(t)
	m.syncViewport()
	return cmd
}

// loadCmd issues the fetch for the tab's current URL. Internal pages
// render locally and never hit the network.
func (m *Model) loadCmd(t *tabs.Tab) tea.Cmd {
	if !fetch.Fetchable(t.URL) {
		t.FinishLoading()
		if t.URL == homeURL {
			return loadStartPage(m.db, t.ID)
		}
		m.pages[t.ID] = tabContent{text: "Nothing to show for " + t.URL}
		return nil
	}
	return fetchPage(m.fetcher, t.ID, t.URL)
}

func (m Model) findTab(id string) *tabs.Tab {
	for _, t := range m.manager.Tabs() {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// dropClosedPages drops page state whose tab is gone.
func (m *Model) dropClosedPages() {
	live := make(map[string]bool, m.manager.Count())
	for _, t := range m.manager.Tabs() {
		live[t.ID] = true
	}
	for id := range m.pages {
		if !live[id] {
			delete(m.pages, id)
		}
	}
}

// syncViewport points the content pane at the active tab's page.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	t := m.manager.ActiveTab()
	if c, ok := m.pages[t.ID]; ok {
		wrapped := lipgloss.NewStyle().Width(m.content.Width).Render(c.text)
		m.content.SetContent(wrapped)
		return
	}
	if t.Loading {
		m.content.SetContent("\n  Loading " + t.URL + " ...")
		return
	}
	m.content.SetContent("")
}

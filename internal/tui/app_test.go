package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lotas/blattwerk/internal/fetch"
	"github.com/lotas/blattwerk/internal/server"
	"github.com/lotas/blattwerk/internal/settings"
	"github.com/lotas/blattwerk/internal/storage"
	"github.com/lotas/blattwerk/internal/tabs"
)

func testModel(t *testing.T, urls ...string) Model {
	t.Helper()
	mgr := tabs.NewManager(urls[0])
	for _, u := range urls[1:] {
		mgr.NewTab(u)
	}
	return NewModel(mgr, settings.Default(), "default", nil, nil)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(keyMsg(key))
	return next.(Model), cmd
}

// runCmd executes a command tree, flattening batches.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(t, c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func TestNewTabKey(t *testing.T) {
	m := testModel(t, "https://go.dev")

	m, _ = press(t, m, "t")

	if m.manager.Count() != 2 {
		t.Fatalf("expected 2 tabs, got %d", m.manager.Count())
	}
	if got := m.manager.ActiveTab().URL; got != "about:home" {
		t.Errorf("new tab should open the homepage, got %q", got)
	}
}

func TestCloseTabAppliedSameUpdate(t *testing.T) {
	m := testModel(t, "https://go.dev", "https://pkg.go.dev")

	m, _ = press(t, m, "x")

	if m.manager.Count() != 1 {
		t.Fatalf("expected 1 tab after close, got %d", m.manager.Count())
	}
	if got := m.manager.ActiveTab().URL; got != "https://go.dev" {
		t.Errorf("wrong tab survived: %q", got)
	}
	if m.pending.Pending() {
		t.Error("close request should be consumed")
	}
}

func TestCloseLastTabRefused(t *testing.T) {
	m := testModel(t, "https://go.dev")

	m, _ = press(t, m, "x")

	if m.manager.Count() != 1 {
		t.Fatalf("last tab must survive, got %d tabs", m.manager.Count())
	}
	if m.status != "cannot close the last tab" {
		t.Errorf("expected refusal status, got %q", m.status)
	}
}

func TestTabSwitchKeys(t *testing.T) {
	m := testModel(t, "https://a.example", "https://b.example", "https://c.example")

	if m.manager.ActiveIndex() != 2 {
		t.Fatalf("setup: active should be 2, got %d", m.manager.ActiveIndex())
	}

	m, _ = press(t, m, "tab")
	if m.manager.ActiveIndex() != 0 {
		t.Errorf("tab should wrap to 0, got %d", m.manager.ActiveIndex())
	}

	m, _ = press(t, m, "shift+tab")
	if m.manager.ActiveIndex() != 2 {
		t.Errorf("shift+tab should wrap to 2, got %d", m.manager.ActiveIndex())
	}

	m, _ = press(t, m, "2")
	if m.manager.ActiveIndex() != 1 {
		t.Errorf("digit should switch to index 1, got %d", m.manager.ActiveIndex())
	}

	m, _ = press(t, m, "9")
	if m.manager.ActiveIndex() != 1 {
		t.Errorf("out-of-range digit should be ignored, got %d", m.manager.ActiveIndex())
	}
}

func TestBackForwardKeys(t *testing.T) {
	m := testModel(t, "https://one.example")
	tab := m.manager.ActiveTab()
	tab.NavigateTo("https://two.example")
	tab.FinishLoading()

	m, cmd := press(t, m, "[")
	if tab.URL != "https://one.example" {
		t.Fatalf("back should restore first URL, got %q", tab.URL)
	}
	if !tab.Loading {
		t.Error("back should mark the tab loading")
	}
	if cmd == nil {
		t.Error("back should schedule a load")
	}

	m, _ = press(t, m, "]")
	if tab.URL != "https://two.example" {
		t.Fatalf("forward should restore second URL, got %q", tab.URL)
	}
	_ = m
}

func TestBackAtHistoryStart(t *testing.T) {
	m := testModel(t, "https://one.example")

	m, _ = press(t, m, "[")

	if got := m.manager.ActiveTab().URL; got != "https://one.example" {
		t.Errorf("URL should be unchanged, got %q", got)
	}
	if m.status != "nothing to go back to" {
		t.Errorf("expected status message, got %q", m.status)
	}
}

func TestPageLoadedUpdatesTab(t *testing.T) {
	m := testModel(t, "https://go.dev")
	tab := m.manager.ActiveTab()
	tab.Reload()

	page := &fetch.Page{
		URL:   "https://go.dev",
		Title: "The Go Programming Language",
		Text:  "Go is an open source programming language.",
		Links: []fetch.Link{{Text: "Docs", URL: "https://go.dev/doc"}},
	}
	next, _ := m.Update(pageLoadedMsg{tabID: tab.ID, page: page})
	m = next.(Model)

	if tab.Loading {
		t.Error("load completion should clear the loading flag")
	}
	if tab.Title != "The Go Programming Language" {
		t.Errorf("title not applied: %q", tab.Title)
	}
	c, ok := m.pages[tab.ID]
	if !ok {
		t.Fatal("page content should be cached by tab ID")
	}
	if c.text != page.Text || len(c.links) != 1 {
		t.Errorf("cached content wrong: %+v", c)
	}
}

func TestStaleFetchDropped(t *testing.T) {
	m := testModel(t, "https://old.example")
	tab := m.manager.ActiveTab()
	tab.NavigateTo("https://new.example")

	next, _ := m.Update(pageLoadedMsg{
		tabID: tab.ID,
		page:  &fetch.Page{URL: "https://old.example", Title: "Old"},
	})
	m = next.(Model)

	if !tab.Loading {
		t.Error("a stale completion must not finish the current load")
	}
	if tab.Title == "Old" {
		t.Error("a stale completion must not set the title")
	}

	// A completion for a tab that no longer exists is dropped too.
	next, _ = m.Update(pageLoadedMsg{
		tabID: "gone",
		page:  &fetch.Page{URL: "https://x.example"},
	})
	_ = next.(Model)
}

func TestControlNavigate(t *testing.T) {
	m := testModel(t, "https://go.dev")

	next, _ := m.Update(controlMsg{cmd: server.Command{Type: server.CmdNavigate, URL: "https://pkg.go.dev"}})
	m = next.(Model)

	tab := m.manager.ActiveTab()
	if tab.URL != "https://pkg.go.dev" {
		t.Fatalf("navigate not applied, URL %q", tab.URL)
	}
	if !tab.Loading {
		t.Error("remote navigation should mark the tab loading")
	}
}

func TestControlCloseTabByIndex(t *testing.T) {
	m := testModel(t, "https://a.example", "https://b.example", "https://c.example")

	idx := 0
	next, _ := m.Update(controlMsg{cmd: server.Command{Type: server.CmdCloseTab, Index: &idx}})
	m = next.(Model)

	if m.manager.Count() != 2 {
		t.Fatalf("expected 2 tabs, got %d", m.manager.Count())
	}
	if got := m.manager.ActiveTab().URL; got != "https://c.example" {
		t.Errorf("active tab should follow the close, got %q", got)
	}
}

func TestControlNewTabAndSwitch(t *testing.T) {
	m := testModel(t, "https://go.dev")

	next, _ := m.Update(controlMsg{cmd: server.Command{Type: server.CmdNewTab, URL: "https://pkg.go.dev"}})
	m = next.(Model)

	if m.manager.Count() != 2 {
		t.Fatalf("expected 2 tabs, got %d", m.manager.Count())
	}
	if got := m.manager.ActiveTab().URL; got != "https://pkg.go.dev" {
		t.Errorf("new tab URL wrong: %q", got)
	}

	idx := 0
	next, _ = m.Update(controlMsg{cmd: server.Command{Type: server.CmdSwitchTab, Index: &idx}})
	m = next.(Model)

	if m.manager.ActiveIndex() != 0 {
		t.Errorf("switch not applied, active %d", m.manager.ActiveIndex())
	}
}

func TestAddressSubmitNavigates(t *testing.T) {
	m := testModel(t, "https://go.dev")

	m, _ = press(t, m, "o")
	if m.mode != modeAddress {
		t.Fatal("o should focus the address bar")
	}

	m.address.SetValue("golang.org")
	m, _ = press(t, m, "enter")

	if m.mode != modeBrowse {
		t.Error("enter should leave address mode")
	}
	if got := m.manager.ActiveTab().URL; got != "https://golang.org" {
		t.Errorf("bare host should get https, got %q", got)
	}
}

func TestAddressSearchQuery(t *testing.T) {
	m := testModel(t, "https://go.dev")

	m, _ = press(t, m, "o")
	m.address.SetValue("tabbed browsing history")
	m, _ = press(t, m, "enter")

	if got := m.manager.ActiveTab().URL; !strings.Contains(got, "duckduckgo.com") {
		t.Errorf("plain words should become a search, got %q", got)
	}
}

func TestAddressEscCancels(t *testing.T) {
	m := testModel(t, "https://go.dev")

	m, _ = press(t, m, "o")
	m.address.SetValue("typo.example")
	m, _ = press(t, m, "esc")

	if m.mode != modeBrowse {
		t.Error("esc should leave address mode")
	}
	if got := m.manager.ActiveTab().URL; got != "https://go.dev" {
		t.Errorf("esc should not navigate, got %q", got)
	}
}

func TestHelpOverlaySwallowsKeys(t *testing.T) {
	m := testModel(t, "https://a.example", "https://b.example")

	m, _ = press(t, m, "?")
	if m.mode != modeHelp {
		t.Fatal("? should open help")
	}

	m, _ = press(t, m, "x")
	if m.mode != modeBrowse {
		t.Error("any key should close help")
	}
	if m.manager.Count() != 2 {
		t.Error("keys pressed with help open must not act on tabs")
	}
}

func TestLinksPicker(t *testing.T) {
	m := testModel(t, "https://go.dev")
	tab := m.manager.ActiveTab()
	m.pages[tab.ID] = tabContent{
		text:  "welcome",
		links: []fetch.Link{{Text: "Docs", URL: "https://go.dev/doc"}},
	}

	m, _ = press(t, m, "L")
	if m.mode != modeLinks {
		t.Fatal("L should open the link picker")
	}

	m, _ = press(t, m, "enter")
	if m.mode != modeBrowse {
		t.Error("enter should close the picker")
	}
	if tab.URL != "https://go.dev/doc" {
		t.Errorf("enter should follow the link, got %q", tab.URL)
	}
}

func TestLinksPickerEmptyPage(t *testing.T) {
	m := testModel(t, "https://go.dev")

	m, _ = press(t, m, "L")

	if m.mode != modeBrowse {
		t.Error("picker must not open without links")
	}
	if m.status != "no links on this page" {
		t.Errorf("expected status message, got %q", m.status)
	}
}

func TestBookmarkKeyWithoutStore(t *testing.T) {
	m := testModel(t, "https://go.dev")

	m, cmd := press(t, m, "m")

	if cmd != nil {
		t.Error("no command should run without storage")
	}
	if m.status != "no profile storage" {
		t.Errorf("expected status message, got %q", m.status)
	}
}

func TestWindowSizeReadiesViewport(t *testing.T) {
	m := testModel(t, "https://go.dev")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	if !m.ready {
		t.Fatal("window size should ready the viewport")
	}
	view := m.View()
	if !strings.Contains(view, "go.dev") {
		t.Errorf("tab bar should show the tab, got:\n%s", view)
	}
	if !strings.Contains(view, "tab 1/1") {
		t.Errorf("status bar should show tab position, got:\n%s", view)
	}
}

func TestStatusBarHiddenBySetting(t *testing.T) {
	st := settings.Default()
	st.Appearance.ShowStatusBar = false
	mgr := tabs.NewManager("https://go.dev")
	m := NewModel(mgr, st, "default", nil, nil)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	view := m.View()
	if strings.Contains(view, "? help") {
		t.Errorf("status bar should not render, got:\n%s", view)
	}
	if m.content.Height != 28 {
		t.Errorf("content pane should reclaim the status line, height = %d", m.content.Height)
	}
}

func TestStartPageFlow(t *testing.T) {
	m := testModel(t, "about:home")
	tab := m.manager.ActiveTab()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	cmd := m.ensureContent(tab)
	if cmd == nil {
		t.Fatal("home tab should schedule a start page load")
	}
	if tab.Loading {
		t.Error("internal pages finish loading immediately")
	}

	msg, ok := cmd().(startPageMsg)
	if !ok {
		t.Fatalf("expected startPageMsg, got %T", cmd())
	}
	next, _ = m.Update(msg)
	m = next.(Model)

	if !strings.Contains(m.View(), "blattwerk") {
		t.Error("start page should render in the content pane")
	}
}

func TestQuitKey(t *testing.T) {
	m := testModel(t, "https://go.dev")

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit, got %T", cmd())
	}
}

func TestToggleBookmarkCmd(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "browser.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	msg := toggleBookmark(db, "https://go.dev", "Go")().(bookmarkToggledMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if !msg.added {
		t.Error("first toggle should add the bookmark")
	}

	msg = toggleBookmark(db, "https://go.dev", "Go")().(bookmarkToggledMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if msg.added {
		t.Error("second toggle should remove the bookmark")
	}
}

func TestSaveSessionKey(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "browser.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	mgr := tabs.NewManager("https://go.dev")
	mgr.NewTab("https://pkg.go.dev")
	m := NewModel(mgr, settings.Default(), "default", db, nil)

	m, cmd := press(t, m, "S")
	if cmd == nil {
		t.Fatal("S should schedule a session save")
	}

	msg := cmd().(sessionSavedMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if msg.tabCount != 2 {
		t.Errorf("expected 2 tabs saved, got %d", msg.tabCount)
	}

	next, _ := m.Update(msg)
	m = next.(Model)
	if !strings.Contains(m.status, "session saved") {
		t.Errorf("expected save confirmation, got %q", m.status)
	}

	latest, err := storage.GetLatestSession(db, "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(latest.Tabs) != 2 {
		t.Errorf("stored session has %d tabs", len(latest.Tabs))
	}
}

func TestVisitLoggedOnLoadWhenEnabled(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "browser.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	st := settings.Default()
	mgr := tabs.NewManager("https://go.dev")
	m := NewModel(mgr, st, "default", db, nil)
	tab := mgr.ActiveTab()
	tab.Reload()

	next, cmd := m.Update(pageLoadedMsg{
		tabID: tab.ID,
		page:  &fetch.Page{URL: "https://go.dev", Title: "Go"},
	})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("load completion should schedule the visit write")
	}
	runCmd(t, cmd)

	n, err := storage.CountVisits(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 visit, got %d", n)
	}
}

func TestVisitNotLoggedWhenDisabled(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "browser.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	st := settings.Default()
	st.Privacy.SaveHistory = false
	mgr := tabs.NewManager("https://go.dev")
	m := NewModel(mgr, st, "default", db, nil)
	tab := mgr.ActiveTab()
	tab.Reload()

	next, cmd := m.Update(pageLoadedMsg{
		tabID: tab.ID,
		page:  &fetch.Page{URL: "https://go.dev", Title: "Go"},
	})
	m = next.(Model)
	runCmd(t, cmd)

	n, err := storage.CountVisits(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no visits with history off, got %d", n)
	}
}

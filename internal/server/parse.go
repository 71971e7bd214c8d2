package server

import (
	"encoding/json"
	"fmt"

	"github.com/lotas/blattwerk/internal/tabs"
)

// Command types accepted over the control socket.
const (
	CmdNavigate  = "navigate"
	CmdBack      = "back"
	CmdForward   = "forward"
	CmdReload    = "reload"
	CmdNewTab    = "new_tab"
	CmdCloseTab  = "close_tab"
	CmdSwitchTab = "switch_tab"
	CmdState     = "state"
)

var knownCommands = map[string]bool{
	CmdNavigate:  true,
	CmdBack:      true,
	CmdForward:   true,
	CmdReload:    true,
	CmdNewTab:    true,
	CmdCloseTab:  true,
	CmdSwitchTab: true,
	CmdState:     true,
}

// ParseCommand validates raw client bytes into a Command.
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("parse command: %w", err)
	}
	if !knownCommands[cmd.Type] {
		return Command{}, fmt.Errorf("unknown command type %q", cmd.Type)
	}

	switch cmd.Type {
	case CmdNavigate:
		if cmd.URL == "" {
			return Command{}, fmt.Errorf("navigate requires url")
		}
	case CmdSwitchTab:
		if cmd.Index == nil {
			return Command{}, fmt.Errorf("switch_tab requires index")
		}
	case CmdCloseTab:
		// Index is optional: absent means the active tab.
	}
	return cmd, nil
}

// StateFrom converts the manager's tabs into a wire state payload.
func StateFrom(m *tabs.Manager) State {
	st := State{Type: "state", Active: m.ActiveIndex()}
	for i, t := range m.Tabs() {
		st.Tabs = append(st.Tabs, StateTab{
			ID:           t.ID,
			URL:          t.URL,
			Title:        t.DisplayTitle(),
			Loading:      t.Loading,
			CanGoBack:    t.CanGoBack(),
			CanGoForward: t.CanGoForward(),
			Active:       i == m.ActiveIndex(),
		})
	}
	return st
}

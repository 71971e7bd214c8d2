package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "\n  Starting...\n"
	}

	switch m.mode {
	case modeBookmarks, modeHistory, modeLinks:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View())
	case modeHelp:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, renderHelp())
	}

	rows := []string{
		m.renderTabBar(),
		m.renderAddressLine(),
		m.content.View(),
	}
	if m.settings.Appearance.ShowStatusBar {
		rows = append(rows, m.renderStatusBar())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderTabBar() string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Underline(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	count := m.manager.Count()
	budget := m.width/count - 6
	if budget < 8 {
		budget = 8
	}
	if budget > 24 {
		budget = 24
	}

	parts := make([]string, 0, count)
	for i, t := range m.manager.Tabs() {
		label := fmt.Sprintf("%d:%s", i+1, truncate(t.DisplayTitle(), budget))
		if t.Loading {
			label += " …"
		}
		if i == m.manager.ActiveIndex() {
			parts = append(parts, activeStyle.Render(label))
		} else {
			parts = append(parts, inactiveStyle.Render(label))
		}
	}
	return " " + strings.Join(parts, inactiveStyle.Render(" │ "))
}

func (m Model) renderAddressLine() string {
	if m.mode == modeAddress {
		return " " + m.address.View()
	}
	urlStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	t := m.manager.ActiveTab()
	line := t.URL
	if t.Loading {
		line += "  loading..."
	}
	return " " + urlStyle.Render(truncate(line, m.width-2))
}

func (m Model) renderStatusBar() string {
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)

	left := fmt.Sprintf("%s · tab %d/%d", m.profile, m.manager.ActiveIndex()+1, m.manager.Count())
	if m.server != nil {
		if m.server.Connected() {
			left += fmt.Sprintf(" · ● :%d", m.server.Port())
		} else {
			left += fmt.Sprintf(" · ○ :%d", m.server.Port())
		}
	}
	if m.status != "" {
		left += " · " + m.status
	}

	right := "? help · q quit"
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return barStyle.Render(left) + strings.Repeat(" ", gap) + barStyle.Render(right)
}

func renderHelp() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	lines := []string{
		"o / ctrl+l        address bar",
		"t / ctrl+t        new tab",
		"x / ctrl+w        close tab",
		"tab / shift+tab   next / previous tab",
		"1-9               switch to tab",
		"[ / ]             back / forward",
		"r                 reload",
		"m / ctrl+d        bookmark or unbookmark page",
		"B                 bookmarks",
		"H                 history",
		"L                 links on this page",
		"S                 save session",
		"j/k pgup/pgdn     scroll",
		"?                 this help",
		"q                 quit",
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n\n")
	for _, l := range lines {
		b.WriteString(normalStyle.Render(l) + "\n")
	}
	return boxStyle.Render(b.String())
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return string(r[:1])
	}
	return string(r[:max-1]) + "…"
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// pickerItem is one selectable row: a label, a dimmed detail shown
// next to it, and the URL opened on enter.
type pickerItem struct {
	label  string
	detail string
	url    string
}

// Picker is a centered overlay list. The same widget backs the
// bookmark, history, and page-link overlays.
type Picker struct {
	Title  string
	Items  []pickerItem
	Cursor int
	Width  int
	Height int
}

func NewPicker(title string, items []pickerItem) Picker {
	return Picker{Title: title, Items: items}
}

func (m *Picker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *Picker) MoveDown() {
	if m.Cursor < len(m.Items)-1 {
		m.Cursor++
	}
}

// Selected reports false when the picker has nothing to select.
func (m Picker) Selected() (pickerItem, bool) {
	if len(m.Items) == 0 {
		return pickerItem{}, false
	}
	return m.Items[m.Cursor], true
}

// maxRows is how many items fit inside the overlay box.
func (m Picker) maxRows() int {
	rows := m.Height - 8 // borders, padding, title, hint
	if rows < 3 {
		rows = 3
	}
	if rows > len(m.Items) {
		rows = len(m.Items)
	}
	return rows
}

func (m Picker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title) + "\n\n")

	if len(m.Items) == 0 {
		b.WriteString(normalStyle.Render("  (empty)") + "\n")
	}

	rows := m.maxRows()
	start := 0
	if m.Cursor >= rows {
		start = m.Cursor - rows + 1
	}
	for i := start; i < start+rows && i < len(m.Items); i++ {
		it := m.Items[i]
		label := truncate(it.label, 48)
		var line string
		if i == m.Cursor {
			line = selectedStyle.Render("> " + label)
		} else {
			line = normalStyle.Render("  " + label)
		}
		if it.detail != "" && it.detail != it.label {
			line += " " + detailStyle.Render(truncate(it.detail, 40))
		}
		b.WriteString(line + "\n")
	}
	if rest := len(m.Items) - start - rows; rest > 0 {
		b.WriteString(detailStyle.Render(fmt.Sprintf("  … %d more", rest)) + "\n")
	}

	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter open · esc cancel"))

	return boxStyle.Render(b.String())
}

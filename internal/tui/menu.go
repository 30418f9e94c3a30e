package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	itemStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	itemSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00d7ff")).Bold(true)
	countStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")).PaddingLeft(2)
	sectionStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd700")).MarginTop(1)
	keyStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7af")).Bold(true)
	descStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	hintStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(1)
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true).MarginTop(1)
)

func (m Model) renderMenu() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(descStyle.Render("No sections collected"))
		b.WriteString("\n")
	}

	for i, item := range m.items {
		prefix := "    "
		if item.Key != "" {
			prefix = fmt.Sprintf("[%s] ", item.Key)
		}

		style := itemStyle
		if i == m.selection {
			style = itemSelectedStyle
		}
		b.WriteString(style.Render(prefix + item.Label))
		b.WriteString(countStyle.Render(fmt.Sprintf("%d entries", item.Entries)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Navigate: ↑/↓ or numbers | Open: Enter | Help: ? | Quit: q"))
	b.WriteString("\n")

	if m.lastError != "" {
		b.WriteString(errorStyle.Render("⚠ " + m.lastError))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderSection() string {
	var b strings.Builder

	lines := m.body
	if page := m.pageSize(); page > 0 && len(lines) > page {
		lines = lines[m.offset:min(m.offset+page, len(lines))]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")

	position := fmt.Sprintf("%d/%d", m.selection+1, len(m.items))
	b.WriteString(hintStyle.Render(position + "  Scroll: ↑/↓ PgUp/PgDn | Next/Prev: n/p | Back: Esc | Quit: q"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Help: Keyboard Shortcuts"))
	b.WriteString("\n\n")

	groups := []struct {
		title    string
		bindings [][2]string
	}{
		{"Menu", [][2]string{
			{"1-9         ", "Open section by number"},
			{"↑ / ↓, k/j  ", "Move selection"},
			{"Enter/Space ", "Open highlighted section"},
		}},
		{"Section", [][2]string{
			{"↑ / ↓, k/j  ", "Scroll one line"},
			{"PgUp / PgDn ", "Scroll one page"},
			{"g / G       ", "Jump to top or bottom"},
			{"n / p       ", "Next or previous section"},
			{"Esc         ", "Return to menu"},
		}},
		{"Global", [][2]string{
			{"?           ", "Show this help"},
			{"q / Ctrl+C  ", "Quit"},
		}},
	}

	for _, g := range groups {
		b.WriteString(sectionStyle.Render(g.title))
		b.WriteString("\n")
		for _, kb := range g.bindings {
			b.WriteString(keyStyle.Render(kb[0]))
			b.WriteString(descStyle.Render(kb[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Press Esc to return to menu"))
	b.WriteString("\n")

	return b.String()
}

// navigateUp moves selection up, wrapping to the bottom
func (m Model) navigateUp() Model {
	if len(m.items) == 0 {
		return m
	}
	if m.selection > 0 {
		m.selection--
	} else {
		m.selection = len(m.items) - 1
	}
	return m
}

// navigateDown moves selection down, wrapping to the top
func (m Model) navigateDown() Model {
	if len(m.items) == 0 {
		return m
	}
	if m.selection < len(m.items)-1 {
		m.selection++
	} else {
		m.selection = 0
	}
	return m
}

// selectByKey opens the section bound to a shortcut key
func (m Model) selectByKey(key string) Model {
	for i, item := range m.items {
		if item.Key != "" && item.Key == key {
			return m.openSection(i)
		}
	}
	return m
}

func (m Model) returnToMenu() Model {
	m.screen = ScreenMenu
	m.offset = 0
	m.lastError = ""
	return m
}

// Package tui implements the interactive section browser of `mlprobe browse`.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mlprobe/internal/facts"
	"mlprobe/internal/logging"
	"mlprobe/internal/render"
)

const (
	keyDown = "down"
	keyUp   = "up"
	// chromeLines is the number of section screen lines outside the scrolled body.
	chromeLines = 3
)

// Model is the bubbletea model of the section browser
type Model struct {
	snap         *facts.Snapshot
	opts         render.Options
	items        []MenuItem
	logger       *logging.Logger
	stateManager *UIStateManager

	screen    Screen
	selection int
	offset    int
	height    int
	body      []string
	lastError string
	quitting  bool
}

// NewModel creates a browser over snap. The last opened section is restored
// from stateDir when it still exists in snap.
func NewModel(snap *facts.Snapshot, opts render.Options, stateDir string, logger *logging.Logger) Model {
	m := Model{
		snap:         snap,
		opts:         opts,
		logger:       logger,
		stateManager: NewUIStateManager(stateDir, logger),
		screen:       ScreenMenu,
	}

	for i, section := range snap.Sections() {
		m.items = append(m.items, MenuItem{
			Key:     shortcutKey(i),
			Label:   section.Name,
			Entries: section.Facts.Len(),
		})
	}

	state, err := m.stateManager.Load()
	if err != nil {
		logger.Warn("tui.state.load_failed", "Could not restore UI state", map[string]interface{}{
			"error": err.Error(),
		})
	}
	for i, item := range m.items {
		if item.Label == state.Section {
			m.selection = i
			break
		}
	}

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.offset = m.clampOffset(m.offset)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		m.saveState()
		return m, tea.Quit
	case "esc", "backspace":
		if m.screen != ScreenMenu {
			return m.returnToMenu(), nil
		}
		return m, nil
	case "?":
		m.screen = ScreenHelp
		return m, nil
	}

	switch m.screen {
	case ScreenMenu:
		return m.handleMenuKey(key), nil
	case ScreenSection:
		return m.handleSectionKey(key), nil
	}
	return m, nil
}

func (m Model) handleMenuKey(key string) Model {
	switch key {
	case keyUp, "k":
		return m.navigateUp()
	case keyDown, "j":
		return m.navigateDown()
	case "enter", " ", "right", "l":
		return m.openSection(m.selection)
	}
	return m.selectByKey(key)
}

func (m Model) handleSectionKey(key string) Model {
	switch key {
	case keyUp, "k":
		m.offset = m.clampOffset(m.offset - 1)
	case keyDown, "j":
		m.offset = m.clampOffset(m.offset + 1)
	case "pgup", "b":
		m.offset = m.clampOffset(m.offset - m.pageSize())
	case "pgdown", "f":
		m.offset = m.clampOffset(m.offset + m.pageSize())
	case "home", "g":
		m.offset = 0
	case "end", "G":
		m.offset = m.clampOffset(len(m.body))
	case "n", "tab":
		next := m.navigateDown()
		return next.openSection(next.selection)
	case "p", "shift+tab":
		prev := m.navigateUp()
		return prev.openSection(prev.selection)
	case "left", "h":
		return m.returnToMenu()
	default:
		return m.selectByKey(key)
	}
	return m
}

// openSection renders the section at index and switches to it
func (m Model) openSection(index int) Model {
	if index < 0 || index >= len(m.items) {
		return m
	}
	name := m.items[index].Label
	out, err := render.Render(m.snap.Filter(name), render.KindTree, m.opts)
	if err != nil {
		m.lastError = err.Error()
		m.logger.Error("tui.render.failed", "Could not render section", map[string]interface{}{
			"section": name,
			"error":   err.Error(),
		})
		return m
	}

	m.selection = index
	m.screen = ScreenSection
	m.body = strings.Split(out, "\n")
	m.offset = 0
	m.lastError = ""
	m.saveState()
	return m
}

// pageSize is the number of body lines visible at once; zero means unbounded.
func (m Model) pageSize() int {
	if m.height <= chromeLines {
		return 0
	}
	return m.height - chromeLines
}

func (m Model) clampOffset(offset int) int {
	page := m.pageSize()
	if page == 0 {
		return 0
	}
	maxOffset := len(m.body) - page
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func (m Model) saveState() {
	if m.selection < 0 || m.selection >= len(m.items) {
		return
	}
	if err := m.stateManager.Save(UIState{Section: m.items[m.selection].Label}); err != nil {
		m.logger.Warn("tui.state.save_failed", "Could not persist UI state", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// View renders the current screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case ScreenSection:
		return m.renderSection()
	case ScreenHelp:
		return m.renderHelp()
	default:
		return m.renderMenu()
	}
}

// Run starts the browser on the terminal and blocks until the user quits
func Run(snap *facts.Snapshot, opts render.Options, stateDir string, logger *logging.Logger) error {
	_, err := tea.NewProgram(NewModel(snap, opts, stateDir, logger), tea.WithAltScreen()).Run()
	return err
}

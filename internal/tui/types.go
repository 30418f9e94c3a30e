package tui

import (
	"strconv"
	"time"
)

// Screen represents different TUI screens
type Screen string

const (
	// ScreenMenu lists the snapshot sections
	ScreenMenu Screen = "menu"
	// ScreenSection shows the facts of one section
	ScreenSection Screen = "section"
	// ScreenHelp shows the key bindings
	ScreenHelp Screen = "help"
)

// MenuItem is one selectable section
type MenuItem struct {
	Key     string // Shortcut key, empty past the ninth section
	Label   string // Section name
	Entries int    // Number of facts in the section
}

// UIState is the persisted browser state (ui_state.json)
type UIState struct {
	Section string    `json:"section"`
	Updated time.Time `json:"updated"`
}

func shortcutKey(index int) string {
	if index < 9 {
		return strconv.Itoa(index + 1)
	}
	return ""
}

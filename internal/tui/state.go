package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mlprobe/internal/fsutil"
	"mlprobe/internal/logging"
)

// UIStateFileName is the name of the UI state file
const UIStateFileName = "ui_state.json"

// UIStateManager persists the last opened section between runs
type UIStateManager struct {
	stateDir string
	logger   *logging.Logger
}

// NewUIStateManager creates a state manager. An empty stateDir disables persistence.
func NewUIStateManager(stateDir string, logger *logging.Logger) *UIStateManager {
	return &UIStateManager{
		stateDir: stateDir,
		logger:   logger,
	}
}

func (m *UIStateManager) statePath() string {
	return filepath.Join(m.stateDir, UIStateFileName)
}

// Load reads the state file; a missing file yields the zero state.
func (m *UIStateManager) Load() (UIState, error) {
	if m.stateDir == "" {
		return UIState{}, nil
	}

	data, err := os.ReadFile(m.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return UIState{}, nil
		}
		return UIState{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var state UIState
	if err := json.Unmarshal(data, &state); err != nil {
		return UIState{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

// Save writes the state atomically
func (m *UIStateManager) Save(state UIState) error {
	if m.stateDir == "" {
		return nil
	}

	state.Updated = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	path := m.statePath()
	if err := fsutil.EnsureParentDirectory(path); err != nil {
		return err
	}
	if err := fsutil.AtomicWriteFile(path, data, fsutil.DefaultFilePermissions, m.logger); err != nil {
		return err
	}

	m.logger.Debug("tui.state.saved", "UI state saved", map[string]interface{}{
		"section": state.Section,
	})
	return nil
}

package configdir

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDir = "/etc/mlprobe"
	// EnvConfigDir overrides the system configuration directory.
	EnvConfigDir = "MLPROBE_CONFIG_DIR"
)

// ConfigDir resolves the system configuration directory respecting overrides
func ConfigDir() string {
	if env := os.Getenv(EnvConfigDir); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
		return env
	}
	return defaultConfigDir
}

package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"mlprobe/internal/logging"
)

const (
	// DefaultDirPermissions is the permission for directories created for output files
	DefaultDirPermissions = 0o750
	// DefaultFilePermissions is the permission for report and bundle files
	DefaultFilePermissions = 0o600
	// EnvStateDir overrides where mlprobe keeps state between runs
	EnvStateDir = "MLPROBE_STATE_DIR"
)

// StateDir resolves the state directory: $MLPROBE_STATE_DIR, then
// <user cache dir>/mlprobe. Empty when neither can be determined.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "mlprobe")
	}
	return ""
}

// EnsureParentDirectory creates the directory that will hold path.
func EnsureParentDirectory(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileMode returns the permission bits of an existing file, or fallback when
// it cannot be read.
func FileMode(path string, fallback os.FileMode) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return fallback
	}
	return info.Mode().Perm()
}

// AtomicWriteFile writes data to a file atomically by first writing to a temp file
// and then renaming it to the target path. Readers never see a partial file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode, logger *logging.Logger) error {
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warn("fsutil.cleanup.failed", "Failed to remove temp file", map[string]interface{}{
				"path":  tmpPath,
				"error": removeErr.Error(),
			})
		}
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// CloseWithError closes a resource and logs any error. Meant for defer statements.
func CloseWithError(closer func() error, logger *logging.Logger, resource string) {
	if err := closer(); err != nil {
		logger.Warn("fsutil.close.failed", fmt.Sprintf("Failed to close %s", resource), map[string]interface{}{
			"error": err.Error(),
		})
	}
}

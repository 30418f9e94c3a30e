package gpu

import (
	"encoding/json"
	"fmt"

	"mlprobe/internal/fsutil"
	"mlprobe/internal/logging"
)

func saveReportToFile(logger *logging.Logger, report Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := fsutil.EnsureParentDirectory(path); err != nil {
		return err
	}
	if err := fsutil.AtomicWriteFile(path, append(data, '\n'), fsutil.DefaultFilePermissions, logger); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	logger.Info("gpu.report.saved", "GPU report saved", map[string]interface{}{
		"path": path,
	})

	return nil
}

package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mlprobe/internal/logging"
)

// fileCollector gathers local files into archive entries, redacted.
type fileCollector struct {
	redactor *Redactor
	logger   *logging.Logger
}

// collectConfigs copies each existing configuration file to config/<n>-<base>.
// Missing files are skipped.
func (c *fileCollector) collectConfigs(paths []string) (map[string][]byte, error) {
	files := make(map[string][]byte)
	var errs []error
	for i, path := range paths {
		content, err := c.readRedacted(path)
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("bundle.collect.config.missing", "Config file not found", map[string]interface{}{
				"path": path,
			})
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files[fmt.Sprintf("config/%d-%s", i, filepath.Base(path))] = content
	}
	return files, errors.Join(errs...)
}

// collectLog copies the log file into logs/.
func (c *fileCollector) collectLog(path string) (map[string][]byte, error) {
	if path == "" {
		return nil, nil
	}
	content, err := c.readRedacted(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("bundle.collect.logs.missing", "Log file not found", map[string]interface{}{
			"path": path,
		})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"logs/" + filepath.Base(path): content}, nil
}

func (c *fileCollector) readRedacted(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return []byte(c.redactor.Redact(string(content))), nil
}

// CalculateSHA256 computes SHA256 hash of data
func CalculateSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

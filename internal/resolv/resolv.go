// Package resolv makes sure a resolver configuration lists a given nameserver.
package resolv

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"

	"mlprobe/internal/fsutil"
	"mlprobe/internal/logging"
)

// BackupSuffix is appended to the configuration path for the backup copy.
const BackupSuffix = ".mlprobe.bak"

// Options select the file and nameserver to patch.
type Options struct {
	File       string
	Nameserver string
	// Backup copies the original file next to it before writing.
	Backup bool
	// DryRun computes the result without touching the file.
	DryRun bool
}

// Result describes what Apply did or would do.
type Result struct {
	Path       string
	Changed    bool
	BackupPath string
	Content    []byte
}

// Patch returns content with "nameserver <ip>" prepended when no line
// mentions the address yet. The second return reports whether it changed.
func Patch(content []byte, nameserver string) ([]byte, bool) {
	for _, line := range bytes.Split(content, []byte("\n")) {
		if bytes.Contains(line, []byte(nameserver)) {
			return content, false
		}
	}

	patched := make([]byte, 0, len(content)+len(nameserver)+12)
	patched = append(patched, "nameserver "+nameserver+"\n"...)
	patched = append(patched, content...)
	return patched, true
}

// Patcher applies Patch to a file on disk.
type Patcher struct {
	logger *logging.Logger
}

// NewPatcher creates a patcher.
func NewPatcher(logger *logging.Logger) *Patcher {
	return &Patcher{logger: logger}
}

// Apply patches opts.File in place. The write is atomic and keeps the file mode.
// A symlinked configuration is patched at its target.
func (p *Patcher) Apply(opts Options) (Result, error) {
	if net.ParseIP(opts.Nameserver) == nil {
		return Result{}, fmt.Errorf("invalid nameserver address %q", opts.Nameserver)
	}

	path, err := filepath.EvalSymlinks(opts.File)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve %s: %w", opts.File, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	patched, changed := Patch(content, opts.Nameserver)
	result := Result{Path: path, Changed: changed, Content: patched}
	if !changed {
		p.logger.Info("resolv.patch.unchanged", "Nameserver already present", map[string]interface{}{
			"file":       path,
			"nameserver": opts.Nameserver,
		})
		return result, nil
	}
	if opts.DryRun {
		return result, nil
	}

	if opts.Backup {
		result.BackupPath = path + BackupSuffix
		if err := copy.Copy(path, result.BackupPath); err != nil {
			return Result{}, fmt.Errorf("failed to back up %s: %w", path, err)
		}
	}

	mode := fsutil.FileMode(path, 0o644)
	if err := fsutil.AtomicWriteFile(path, patched, mode, p.logger); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	p.logger.Info("resolv.patch.applied", "Nameserver prepended", map[string]interface{}{
		"file":       path,
		"nameserver": opts.Nameserver,
		"backup":     result.BackupPath,
	})
	return result, nil
}

// Package gitstatus reports the git state of every immediate subdirectory of
// a folder.
package gitstatus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"mlprobe/internal/logging"
	"mlprobe/internal/sysexec"
)

// Status is the git state of one folder.
type Status string

// Folder states
const (
	NotARepo    Status = "Not a git repo"
	Uncommitted Status = "Uncommitted"
	NoUpstream  Status = "Unpushed (no upstream branch)"
	Unpushed    Status = "Unpushed"
	Synced      Status = "Synced"
	CheckFailed Status = "Error checking git status"
)

const headerRuleLength = 50

// ErrNotDirectory is returned when the scanned path is missing or not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Result is the status of one subdirectory.
type Result struct {
	Name   string
	Path   string
	Status Status
}

// Scanner runs git in each subdirectory of a base folder.
type Scanner struct {
	runner sysexec.Runner
	logger *logging.Logger
	skip   []string
}

// NewScanner creates a scanner. Subdirectory names matching any skip glob
// are left out.
func NewScanner(runner sysexec.Runner, logger *logging.Logger, skip []string) *Scanner {
	return &Scanner{runner: runner, logger: logger, skip: skip}
}

// Scan checks every immediate subdirectory of base, sorted by name.
func (s *Scanner) Scan(ctx context.Context, base string) ([]Result, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", base, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", abs, err)
	}

	var results []Result
	for _, entry := range entries {
		if !entry.IsDir() || s.skipped(entry.Name()) {
			continue
		}
		dir := filepath.Join(abs, entry.Name())
		results = append(results, Result{
			Name:   entry.Name(),
			Path:   dir,
			Status: s.Check(ctx, dir),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

func (s *Scanner) skipped(name string) bool {
	for _, pattern := range s.skip {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Check returns the status of a single folder.
func (s *Scanner) Check(ctx context.Context, dir string) Status {
	res, err := s.git(ctx, dir, "rev-parse", "--git-dir")
	if err != nil {
		return s.failed(dir, err)
	}
	if res.ExitCode != 0 {
		return NotARepo
	}

	res, err = s.git(ctx, dir, "status", "--porcelain")
	if err != nil || res.ExitCode != 0 {
		return s.failed(dir, exitError(res, err))
	}
	if strings.TrimSpace(string(res.Stdout)) != "" {
		return Uncommitted
	}

	res, err = s.git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || res.ExitCode != 0 {
		return s.failed(dir, exitError(res, err))
	}
	upstream := strings.TrimSpace(string(res.Stdout)) + "@{u}"

	res, err = s.git(ctx, dir, "rev-parse", "--abbrev-ref", upstream)
	if err != nil {
		return s.failed(dir, err)
	}
	if res.ExitCode != 0 {
		return NoUpstream
	}

	res, err = s.git(ctx, dir, "rev-list", "--count", upstream+"..HEAD")
	if err != nil || res.ExitCode != 0 {
		return s.failed(dir, exitError(res, err))
	}
	if count := strings.TrimSpace(string(res.Stdout)); count != "" && count != "0" {
		return Unpushed
	}
	return Synced
}

func (s *Scanner) git(ctx context.Context, dir string, args ...string) (sysexec.Result, error) {
	return s.runner.Run(ctx, dir, "git", args...)
}

func (s *Scanner) failed(dir string, err error) Status {
	s.logger.Warn("gitstatus.check.failed", "Failed to check git status", map[string]interface{}{
		"dir":   dir,
		"error": err.Error(),
	})
	return CheckFailed
}

func exitError(res sysexec.Result, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("git exited with status %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr)))
}

// Write prints the results as an aligned "name : status" table under a header.
func Write(w io.Writer, results []Result) error {
	width := 0
	for _, r := range results {
		width = max(width, len(r.Name))
	}

	var b strings.Builder
	b.WriteString("\nGit Repository Status Check\n")
	b.WriteString(strings.Repeat("=", headerRuleLength) + "\n")
	if len(results) == 0 {
		b.WriteString("No subdirectories found\n")
	}
	for _, r := range results {
		fmt.Fprintf(&b, "%-*s : %s\n", width, r.Name, r.Status)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

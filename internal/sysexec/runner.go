// Package sysexec runs external tools for probes that can only learn a fact
// from a CLI (docker, nvcc, git, the Python interpreter).
package sysexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned when the executable is not on PATH.
var ErrNotFound = errors.New("executable not found")

// Result is the captured output of one command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a command and captures its output.
type Runner interface {
	// Run returns an error only when the command could not be started or did
	// not finish. A non-zero exit is reported through Result.ExitCode.
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec, each bounded by Timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates a runner with the given per-command timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	if _, err := exec.LookPath(name); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- callers pass fixed tool names
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}

	return result, nil
}

// Output runs the command and returns trimmed stdout when it exits zero.
func Output(ctx context.Context, r Runner, name string, args ...string) (string, error) {
	res, err := r.Run(ctx, "", name, args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s exited with status %d: %s", name, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

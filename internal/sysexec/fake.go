package sysexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeRunner answers commands from a table keyed by "dir|name arg1 arg2".
// A missing dir matches any directory. Unknown commands report ErrNotFound.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]FakeResponse
	calls     []string
}

// FakeResponse is the canned answer for one command line.
type FakeResponse struct {
	Result Result
	Err    error
}

// NewFakeRunner creates an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]FakeResponse)}
}

// On registers stdout and an exit code for a command line run in any directory.
func (f *FakeRunner) On(commandLine, stdout string, exitCode int) *FakeRunner {
	return f.OnDir("", commandLine, stdout, exitCode)
}

// OnDir registers stdout and an exit code for a command line run in dir.
func (f *FakeRunner) OnDir(dir, commandLine, stdout string, exitCode int) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[dir+"|"+commandLine] = FakeResponse{Result: Result{Stdout: []byte(stdout), ExitCode: exitCode}}
	return f
}

// OnError registers a start failure for a command line.
func (f *FakeRunner) OnError(commandLine string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses["|"+commandLine] = FakeResponse{Result: Result{ExitCode: -1}, Err: err}
	return f
}

// Calls returns the command lines run so far.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, dir, name string, args ...string) (Result, error) {
	commandLine := strings.TrimSpace(name + " " + strings.Join(args, " "))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, commandLine)

	if resp, ok := f.responses[dir+"|"+commandLine]; ok {
		return resp.Result, resp.Err
	}
	if resp, ok := f.responses["|"+commandLine]; ok {
		return resp.Result, resp.Err
	}
	return Result{ExitCode: -1}, fmt.Errorf("%s: %w", name, ErrNotFound)
}

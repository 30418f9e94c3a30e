// Command mlprobe inspects a machine learning host: it collects hardware,
// driver and framework facts and renders them, and bundles a few helpers
// used when setting such a host up.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"mlprobe/internal/collector"
	"mlprobe/internal/config"
	"mlprobe/internal/facts"
	"mlprobe/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.3.0-dev"

var errUnknownCommand = errors.New("unknown command")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries what every command handler needs.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	logger *logging.Logger
	tty    bool
}

type handler func(ctx context.Context, c *cli, args []string) error

func commandHandlers() map[string]handler {
	return map[string]handler{
		"info":         runInfo,
		"browse":       runBrowse,
		"gpu-check":    runGPUCheck,
		"flops":        runFlops,
		"git-status":   runGitStatus,
		"resolv-patch": runResolvPatch,
		"bundle":       runBundle,
		"config":       runConfig,
		"version":      runVersion,
		"help":         runHelp,
		"--help":       runHelp,
		"-h":           runHelp,
	}
}

// configOptional lists commands that still run when the configuration is invalid.
var configOptional = map[string]bool{
	"config":  true,
	"version": true,
	"help":    true,
	"--help":  true,
	"-h":      true,
}

// run dispatches args[0] to its handler; no arguments means `info`.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	command := "info"
	if len(args) > 0 {
		command = strings.ToLower(args[0])
		args = args[1:]
	}

	h, ok := commandHandlers()[command]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("%w: %s", errUnknownCommand, command)
	}

	cfg, err := config.Load()
	if err != nil && !configOptional[command] {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "Warning: failed to close log file: %v\n", closeErr)
		}
	}()

	started := time.Now()
	logger.Debug("app.started", "Command started", map[string]interface{}{
		"command": command,
		"version": version,
	})

	c := &cli{
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		logger: logger,
		tty:    isTerminal(stdout),
	}
	err = h(ctx, c, args)
	if errors.Is(err, pflag.ErrHelp) {
		err = nil
	}

	logger.Debug("app.exited", "Command finished", map[string]interface{}{
		"command":     command,
		"duration_ms": time.Since(started).Milliseconds(),
		"ok":          err == nil,
	})
	return err
}

func newLogger(cfg config.Config, stderr io.Writer) (*logging.Logger, error) {
	level := logging.ResolveLevel(cfg.Logging.Level)
	if cfg.Logging.File == "" {
		return logging.NewWriterLogger(level, stderr), nil
	}
	logger, err := logging.NewFileLogger(level, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newFlagSet creates a per-command flag set that reports errors instead of exiting.
func (c *cli) newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("mlprobe "+name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.SortFlags = false
	return fs
}

// collect runs every enabled probe with the configured environment.
func (c *cli) collect(ctx context.Context) *facts.Snapshot {
	env := collector.NewEnv(c.cfg, c.logger)
	col := collector.New(collector.DefaultProbes(env), c.logger, collector.WithDisabled(c.cfg.Probes.Disabled...))
	return col.Collect(ctx)
}

func runVersion(_ context.Context, c *cli, _ []string) error {
	fmt.Fprintf(c.stdout, "mlprobe version %s\n", version)
	return nil
}

func runHelp(_ context.Context, c *cli, _ []string) error {
	printUsage(c.stdout)
	return nil
}

var commandSummaries = map[string]string{
	"info":         "Collect host facts and render them (default command)",
	"browse":       "Browse the collected sections interactively",
	"gpu-check":    "Check CUDA availability and print troubleshooting hints",
	"flops":        "Measure matrix multiplication throughput in GFLOPs",
	"git-status":   "Show the git status of every subdirectory of <directory>",
	"resolv-patch": "Ensure a nameserver line is present in resolv.conf",
	"bundle":       "Create a redacted diagnostic bundle (zip)",
	"config":       "Validate configuration (config test [path])",
	"version":      "Print the mlprobe version",
	"help":         "Show this help",
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mlprobe <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commandSummaries))
	for name := range commandSummaries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-13s %s\n", name, commandSummaries[name])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mlprobe <command> --help' for the flags of a command.")
	fmt.Fprintf(w, "Log level: $%s (debug, info, warn, error)\n", logging.EnvLevel)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"mlprobe/internal/bench"
	"mlprobe/internal/bundle"
	"mlprobe/internal/config"
	"mlprobe/internal/fsutil"
	"mlprobe/internal/gitstatus"
	"mlprobe/internal/gpu"
	"mlprobe/internal/render"
	"mlprobe/internal/resolv"
	"mlprobe/internal/sysexec"
	"mlprobe/internal/tui"
)

func runInfo(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("info")
	format := fs.StringP("format", "f", c.cfg.Output.Format, "output format: text, tree, json, markdown, yaml, html")
	output := fs.StringP("output", "o", "", "write the rendering to a file instead of stdout")
	sections := fs.StringArrayP("section", "s", nil, "only render this section (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := c.resolveKind(*format, *output == "")
	if err != nil {
		return err
	}

	snap := c.collect(ctx)
	if len(*sections) > 0 {
		snap = snap.Filter(*sections...)
	}

	out, err := render.Render(snap, kind, render.OptionsFromConfig(c.cfg))
	if err != nil {
		return err
	}

	if *output == "" {
		fmt.Fprintln(c.stdout, out)
		return nil
	}
	if err := fsutil.EnsureParentDirectory(*output); err != nil {
		return err
	}
	if err := fsutil.AtomicWriteFile(*output, []byte(out+"\n"), fsutil.DefaultFilePermissions, c.logger); err != nil {
		return err
	}
	c.logger.Info("info.report.saved", "Report written", map[string]interface{}{
		"path":   *output,
		"format": string(kind),
	})
	return nil
}

// resolveKind picks the render kind: an explicit name, otherwise tree for an
// interactive stdout and text for pipes and files.
func (c *cli) resolveKind(name string, toStdout bool) (render.Kind, error) {
	if name != "" {
		return render.ParseKind(name)
	}
	if toStdout && c.tty {
		return render.KindTree, nil
	}
	return render.KindText, nil
}

func runBrowse(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("browse")
	stateDir := fs.String("state-dir", fsutil.StateDir(), "directory remembering the last opened section")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !c.tty {
		return errors.New("browse needs an interactive terminal; use 'mlprobe info' instead")
	}

	snap := c.collect(ctx)
	return tui.Run(snap, render.OptionsFromConfig(c.cfg), *stateDir, c.logger)
}

func runGPUCheck(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("gpu-check")
	save := fs.String("save", "", "also write the GPU report as JSON to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	detector := gpu.NewDetector(c.logger)
	toolkit := gpu.NewToolkitDetector(sysexec.NewExecRunner(c.cfg.ProbeTimeout()), c.logger)
	result := gpu.RunCheck(ctx, detector, toolkit)
	fmt.Fprint(c.stdout, result.String())

	if *save != "" {
		if err := detector.SaveReport(result.Report, *save); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "✓ GPU report saved to %s\n", *save)
	}
	return nil
}

func runFlops(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("flops")
	size := fs.Int("size", c.cfg.Bench.Size, "matrix dimension n of the n×n operands")
	iterations := fs.Int("iterations", c.cfg.Bench.Iterations, "measured multiplications")
	warmup := fs.Int("warmup", c.cfg.Bench.Warmup, "unmeasured multiplications run first")
	requireGPU := fs.Bool("require-gpu", false, "abort when no NVIDIA GPU is visible")
	metricsFile := fs.String("metrics-file", "", "write Prometheus textfile metrics to this path")
	history := fs.String("history", "", "append the result as a JSON line to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lock := bench.NewLock(fsutil.StateDir(), c.logger)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			c.logger.Warn("bench.lock.release_failed", "Could not release benchmark lock", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	runner := bench.NewRunner(gpu.NewDetector(c.logger), c.logger)
	result, err := runner.Run(ctx, bench.Config{
		Size:       *size,
		Iterations: *iterations,
		Warmup:     *warmup,
		RequireGPU: *requireGPU,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, result.String())
	fmt.Fprintf(c.stdout, "  Device: %s  Size: %d  Iterations: %d  Elapsed: %s\n",
		result.Device, result.Size, result.Iterations, result.Elapsed.Round(time.Millisecond))

	writer := bench.NewWriter(c.logger)
	if *metricsFile != "" {
		if err := writer.WriteTextfile(result, *metricsFile); err != nil {
			return err
		}
	}
	if *history != "" {
		if err := writer.AppendHistory(result, *history); err != nil {
			return err
		}
	}
	return nil
}

func runGitStatus(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("git-status")
	skip := fs.StringArray("skip", c.cfg.Git.Skip, "glob of subdirectory names to ignore (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("git-status requires exactly one directory argument")
	}

	scanner := gitstatus.NewScanner(sysexec.NewExecRunner(c.cfg.ProbeTimeout()), c.logger, *skip)
	results, err := scanner.Scan(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return gitstatus.Write(c.stdout, results)
}

func runResolvPatch(_ context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("resolv-patch")
	opts := resolv.Options{}
	fs.StringVar(&opts.Nameserver, "nameserver", c.cfg.Resolv.Nameserver, "nameserver address to ensure")
	fs.StringVar(&opts.File, "file", c.cfg.Resolv.File, "resolver configuration to patch")
	fs.BoolVar(&opts.Backup, "backup", false, "copy the original file to <file>"+resolv.BackupSuffix+" first")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "print the patched file without writing it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := resolv.NewPatcher(c.logger).Apply(opts)
	if err != nil {
		return err
	}

	switch {
	case !result.Changed:
		fmt.Fprintf(c.stdout, "✓ nameserver %s already present in %s\n", opts.Nameserver, result.Path)
	case opts.DryRun:
		fmt.Fprintf(c.stdout, "Would write %s:\n%s", result.Path, result.Content)
	default:
		fmt.Fprintf(c.stdout, "✓ Added nameserver %s to %s\n", opts.Nameserver, result.Path)
		if result.BackupPath != "" {
			fmt.Fprintf(c.stdout, "  Backup: %s\n", result.BackupPath)
		}
	}
	return nil
}

func runBundle(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("bundle")
	output := fs.StringP("output", "o", "", "archive path (default mlprobe-bundle-<timestamp>.zip)")
	encrypt := fs.Bool("encrypt", false, "encrypt the archive with $"+bundle.EnvPassphrase)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := bundle.Config{
		OutputPath:  *output,
		ConfigPaths: []string{config.SystemConfigPath(), config.UserConfigPath()},
		LogFile:     c.cfg.Logging.File,
		Version:     version,
	}
	if *encrypt {
		cfg.Passphrase = os.Getenv(bundle.EnvPassphrase)
		if cfg.Passphrase == "" {
			return fmt.Errorf("--encrypt requires $%s to be set", bundle.EnvPassphrase)
		}
	}

	fmt.Fprintln(c.stdout, "Creating diagnostic bundle...")
	snap := c.collect(ctx)

	path, err := bundle.NewPackager(cfg, render.OptionsFromConfig(c.cfg), c.logger).Create(snap)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}

	fmt.Fprintln(c.stdout, "✓ Diagnostic bundle created")
	fmt.Fprintf(c.stdout, "  Path: %s\n", path)
	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(c.stdout, "  Size: %s\n", humanize.Bytes(uint64(info.Size())))
	}
	if *encrypt {
		fmt.Fprintln(c.stdout, "  Encrypted: yes")
	}
	return nil
}

func runConfig(_ context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "Usage: mlprobe config test [path]")
		return errors.New("missing config subcommand")
	}

	switch sub := strings.ToLower(args[0]); sub {
	case "test":
		return runConfigTest(c, args[1:])
	default:
		return fmt.Errorf("unknown config subcommand %q (valid: test)", sub)
	}
}

func runConfigTest(c *cli, args []string) error {
	var (
		cfg config.Config
		err error
	)
	if len(args) > 0 {
		fmt.Fprintf(c.stdout, "Testing configuration file: %s\n", args[0])
		cfg, err = config.LoadFrom(args[0])
	} else {
		fmt.Fprintln(c.stdout, "Testing configuration (system + user merge):")
		fmt.Fprintf(c.stdout, "  System config: %s\n", config.SystemConfigPath())
		if userPath := config.UserConfigPath(); userPath != "" {
			fmt.Fprintf(c.stdout, "  User config:   %s\n", userPath)
		}
		cfg, err = config.Load()
	}

	if err != nil {
		c.logger.Error("config.validation.error", "Configuration validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	format := cfg.Output.Format
	if format == "" {
		format = "auto (tree on a terminal, text otherwise)"
	}
	disabled := "none"
	if len(cfg.Probes.Disabled) > 0 {
		disabled = strings.Join(cfg.Probes.Disabled, ", ")
	}

	fmt.Fprintln(c.stdout, "✓ Configuration is VALID")
	fmt.Fprintf(c.stdout, "  Output format:    %s\n", format)
	fmt.Fprintf(c.stdout, "  Disabled probes:  %s\n", disabled)
	fmt.Fprintf(c.stdout, "  Probe timeout:    %s\n", cfg.ProbeTimeout())
	fmt.Fprintf(c.stdout, "  Python:           %s\n", cfg.Python.Executable)
	fmt.Fprintf(c.stdout, "  Benchmark:        %dx%d, %d iterations\n", cfg.Bench.Size, cfg.Bench.Size, cfg.Bench.Iterations)
	fmt.Fprintf(c.stdout, "  Log level:        %s\n", cfg.Logging.Level)
	return nil
}

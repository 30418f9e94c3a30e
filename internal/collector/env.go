package collector

import (
	"os"
	"runtime/debug"
	"time"

	"mlprobe/internal/config"
	"mlprobe/internal/gpu"
	"mlprobe/internal/logging"
	"mlprobe/internal/sysexec"
)

// Env holds the collaborators the default probes read from. Zero fields are
// filled with the production implementation.
type Env struct {
	Runner  sysexec.Runner
	GPU     gpu.Source
	Toolkit *gpu.ToolkitDetector
	Logger  *logging.Logger

	PythonExecutable string
	RelatedPackages  []string

	Getenv     func(string) string
	ReadFile   func(string) ([]byte, error)
	Executable func() (string, error)
	Getwd      func() (string, error)
	BuildInfo  func() (*debug.BuildInfo, bool)
	Now        func() time.Time

	// SysRoot is the filesystem root hardware data is read under.
	SysRoot string

	// CPUSampleInterval is how long CPU usage is sampled for.
	CPUSampleInterval time.Duration
}

// NewEnv builds the production environment from configuration.
func NewEnv(cfg config.Config, logger *logging.Logger) Env {
	runner := sysexec.NewExecRunner(cfg.ProbeTimeout())
	return Env{
		Runner:           runner,
		GPU:              gpu.NewDetector(logger),
		Toolkit:          gpu.NewToolkitDetector(runner, logger),
		Logger:           logger,
		PythonExecutable: cfg.Python.Executable,
		RelatedPackages:  cfg.Python.RelatedPackages,
	}.withDefaults()
}

func (e Env) withDefaults() Env {
	if e.Runner == nil {
		e.Runner = sysexec.NewExecRunner(10 * time.Second)
	}
	if e.GPU == nil {
		e.GPU = gpu.NewDetector(e.Logger)
	}
	if e.Toolkit == nil {
		e.Toolkit = gpu.NewToolkitDetector(e.Runner, e.Logger)
	}
	if e.PythonExecutable == "" {
		e.PythonExecutable = config.DefaultConfig().Python.Executable
	}
	if e.RelatedPackages == nil {
		e.RelatedPackages = config.DefaultRelatedPackages
	}
	if e.Getenv == nil {
		e.Getenv = os.Getenv
	}
	if e.ReadFile == nil {
		e.ReadFile = os.ReadFile
	}
	if e.Executable == nil {
		e.Executable = os.Executable
	}
	if e.Getwd == nil {
		e.Getwd = os.Getwd
	}
	if e.BuildInfo == nil {
		e.BuildInfo = debug.ReadBuildInfo
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.SysRoot == "" {
		e.SysRoot = "/"
	}
	if e.CPUSampleInterval == 0 {
		e.CPUSampleInterval = 100 * time.Millisecond
	}
	return e
}

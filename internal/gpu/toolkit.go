package gpu

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"mlprobe/internal/logging"
	"mlprobe/internal/sysexec"
)

var nvccReleasePattern = regexp.MustCompile(`release (\d+\.\d+)`)

// ToolkitDetector inspects the CUDA tooling installed next to the driver:
// the container toolkit, nvcc and nvidia-smi.
type ToolkitDetector struct {
	runner sysexec.Runner
	logger *logging.Logger
}

// NewToolkitDetector creates a new toolkit detector
func NewToolkitDetector(runner sysexec.Runner, logger *logging.Logger) *ToolkitDetector {
	return &ToolkitDetector{
		runner: runner,
		logger: logger,
	}
}

// DetectContainerToolkit checks if Docker can hand GPUs to containers
func (td *ToolkitDetector) DetectContainerToolkit(ctx context.Context) ContainerToolkitReport {
	td.logger.Debug("gpu.toolkit.detect.start", "Starting Container Toolkit detection", nil)

	report := ContainerToolkitReport{}

	res, err := td.runner.Run(ctx, "", "docker", "info", "--format", "{{json .Runtimes}}")
	if err != nil || res.ExitCode != 0 {
		report.ErrorMessage = "Docker is not available"
		td.logger.Debug("gpu.toolkit.docker.unavailable", "Docker not found", nil)
		return report
	}

	if !td.hasNvidiaRuntime(ctx, res.Stdout) {
		report.ErrorMessage = "NVIDIA runtime not listed in docker info"
		td.logger.Debug("gpu.toolkit.runtime.absent", "NVIDIA runtime not detected", nil)
		return report
	}

	report.DockerSupport = true
	report.ToolkitVersion = td.toolkitVersion(ctx)

	td.logger.Debug("gpu.toolkit.detected", "Container Toolkit detected", map[string]interface{}{
		"version": report.ToolkitVersion,
	})

	return report
}

func (td *ToolkitDetector) hasNvidiaRuntime(ctx context.Context, runtimesJSON []byte) bool {
	runtimes := make(map[string]json.RawMessage)
	if err := json.Unmarshal(runtimesJSON, &runtimes); err == nil {
		_, ok := runtimes["nvidia"]
		return ok
	}

	td.logger.Debug("gpu.toolkit.runtime.parse_failed", "Falling back to plain docker info", nil)
	info, err := sysexec.Output(ctx, td.runner, "docker", "info")
	if err != nil {
		return false
	}
	return strings.Contains(info, "Runtimes: nvidia") || strings.Contains(info, "nvidia-container-runtime")
}

// toolkitVersion parses "NVIDIA Container Toolkit version X.Y.Z".
func (td *ToolkitDetector) toolkitVersion(ctx context.Context) string {
	out, err := sysexec.Output(ctx, td.runner, "nvidia-container-toolkit", "--version")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "version") {
			parts := strings.Fields(line)
			if len(parts) > 0 {
				return parts[len(parts)-1]
			}
		}
	}
	return ""
}

// NvccVersion returns the CUDA compiler release, e.g. "12.2", or "" when nvcc
// is not installed.
func (td *ToolkitDetector) NvccVersion(ctx context.Context) string {
	out, err := sysexec.Output(ctx, td.runner, "nvcc", "--version")
	if err != nil {
		return ""
	}
	if m := nvccReleasePattern.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return ""
}

// SMIAvailable reports whether nvidia-smi runs successfully.
func (td *ToolkitDetector) SMIAvailable(ctx context.Context) bool {
	_, err := sysexec.Output(ctx, td.runner, "nvidia-smi")
	return err == nil
}

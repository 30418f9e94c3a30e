package gpu

import (
	"context"
	"fmt"
	"strings"

	"mlprobe/internal/facts"
)

// Troubleshooting hints printed when no CUDA device is usable.
var commonIssues = []string{
	"The GPU is not supported by the installed CUDA version.",
	"Missing or incompatible NVIDIA driver.",
	"PyTorch not installed with CUDA support. Consider installing the CUDA version of PyTorch.",
}

// CheckResult gathers everything the CUDA sanity check reports.
type CheckResult struct {
	Report       Report                 `json:"gpu"`
	NvccVersion  string                 `json:"nvcc_version,omitempty"`
	SMIAvailable bool                   `json:"nvidia_smi_available"`
	Toolkit      ContainerToolkitReport `json:"container_toolkit"`
}

// RunCheck queries the driver and the CUDA tooling.
func RunCheck(ctx context.Context, source Source, toolkit *ToolkitDetector) CheckResult {
	return CheckResult{
		Report:       source.Detect(),
		NvccVersion:  toolkit.NvccVersion(ctx),
		SMIAvailable: toolkit.SMIAvailable(ctx),
		Toolkit:      toolkit.DetectContainerToolkit(ctx),
	}
}

// Hints returns troubleshooting advice, empty when a device is usable.
func (c CheckResult) Hints() []string {
	if c.Report.Available() {
		return nil
	}
	hints := append([]string(nil), commonIssues...)
	if c.Report.ErrorMessage == DisabledMessage {
		hints = append(hints, "This binary was built without NVML support; rebuild with -tags cuda.")
	}
	if !c.SMIAvailable {
		hints = append(hints, "nvidia-smi is not working; the kernel driver may not be loaded.")
	}
	return hints
}

// String renders the check as the plain-text report printed by gpu-check.
func (c CheckResult) String() string {
	var b strings.Builder

	if !c.Report.Available() {
		b.WriteString("CUDA is not available. Check your driver installation and if your system has a CUDA-capable GPU.\n")
		if c.Report.ErrorMessage != "" {
			fmt.Fprintf(&b, "Reason: %s\n", c.Report.ErrorMessage)
		}
		b.WriteString("Common installation issues:\n")
		for _, hint := range c.Hints() {
			fmt.Fprintf(&b, "- %s\n", hint)
		}
		return b.String()
	}

	b.WriteString("CUDA is available: Yes\n")
	fmt.Fprintf(&b, "Driver version: %s\n", orUnknown(c.Report.DriverVersion))
	fmt.Fprintf(&b, "CUDA version: %s\n", orUnknown(c.Report.CUDAVersion))
	fmt.Fprintf(&b, "nvcc release: %s\n", orValue(c.NvccVersion, facts.NotInstalled))
	fmt.Fprintf(&b, "GPU count: %d\n", len(c.Report.Devices))
	for _, device := range c.Report.Devices {
		fmt.Fprintf(&b, "  [%d] %s (compute capability %s", device.Index, orUnknown(device.Name), orUnknown(device.Capability))
		if device.MemoryTotal > 0 {
			fmt.Fprintf(&b, ", %s", facts.FormatGB(device.MemoryTotal))
		}
		b.WriteString(")\n")
	}

	if c.Toolkit.DockerSupport {
		fmt.Fprintf(&b, "Container toolkit: %s\n", orValue(c.Toolkit.ToolkitVersion, "detected"))
	} else {
		fmt.Fprintf(&b, "Container toolkit: not detected (%s)\n", orValue(c.Toolkit.ErrorMessage, facts.Unknown))
	}

	return b.String()
}

func orUnknown(s string) string {
	return orValue(s, facts.Unknown)
}

func orValue(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

package gpu

import (
	"context"
	"strings"
	"testing"

	"mlprobe/internal/facts"
	"mlprobe/internal/sysexec"
)

type staticSource Report

func (s staticSource) Detect() Report { return Report(s) }

func TestRunCheck_Available(t *testing.T) {
	source := staticSource{
		NVMLOk:        true,
		DriverVersion: "535.104.05",
		CUDAVersion:   "12.2",
		Devices: []facts.DeviceRecord{
			{Index: 0, Name: "NVIDIA A100", Capability: "8.0", MemoryTotal: 40 << 30},
		},
	}
	runner := sysexec.NewFakeRunner().
		On("nvcc --version", "Cuda compilation tools, release 12.2, V12.2.140", 0).
		On("nvidia-smi", "ok", 0)

	result := RunCheck(context.Background(), source, newToolkit(runner))
	out := result.String()

	for _, want := range []string{
		"CUDA is available: Yes",
		"CUDA version: 12.2",
		"nvcc release: 12.2",
		"GPU count: 1",
		"[0] NVIDIA A100 (compute capability 8.0, 40.00 GB)",
		"Container toolkit: not detected (Docker is not available)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(result.Hints()) != 0 {
		t.Errorf("Hints() = %v, want none", result.Hints())
	}
}

func TestRunCheck_Unavailable(t *testing.T) {
	source := staticSource{ErrorMessage: DisabledMessage, Devices: []facts.DeviceRecord{}}

	result := RunCheck(context.Background(), source, newToolkit(sysexec.NewFakeRunner()))
	out := result.String()

	if !strings.HasPrefix(out, "CUDA is not available.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	for _, hint := range commonIssues {
		if !strings.Contains(out, "- "+hint) {
			t.Errorf("output missing hint %q", hint)
		}
	}
	if !strings.Contains(out, "rebuild with -tags cuda") {
		t.Errorf("output missing rebuild hint:\n%s", out)
	}
	if strings.Contains(out, "GPU count") {
		t.Errorf("device lines should not be printed:\n%s", out)
	}
}

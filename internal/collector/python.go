package collector

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mlprobe/internal/facts"
	"mlprobe/internal/sysexec"
)

//go:embed scripts/query.py
var pythonQueryScript string

// pythonReport is what scripts/query.py prints.
type pythonReport struct {
	Version        string       `json:"version"`
	Implementation string       `json:"implementation"`
	Compiler       string       `json:"compiler"`
	BuildDate      string       `json:"build_date"`
	Executable     string       `json:"executable"`
	Packages       []string     `json:"packages"`
	Torch          *torchReport `json:"torch"`
}

// torchReport holds PyTorch facts. Nil pointers are reads that failed.
type torchReport struct {
	ImportError       string           `json:"import_error"`
	Version           string           `json:"version"`
	CUDAAvailable     bool             `json:"cuda_available"`
	CUDAVersion       *string          `json:"cuda_version"`
	HIPVersion        *string          `json:"hip_version"`
	DeviceCount       int              `json:"device_count"`
	DefaultDtype      string           `json:"default_dtype"`
	NumThreads        int              `json:"num_threads"`
	NumInteropThreads *int             `json:"num_interop_threads"`
	CuDNNAvailable    *bool            `json:"cudnn_available"`
	CuDNNVersion      *int             `json:"cudnn_version"`
	HasMKL            *bool            `json:"has_mkl"`
	HasOpenMP         *bool            `json:"has_openmp"`
	HasMKLDNN         *bool            `json:"has_mkldnn"`
	MPSAvailable      *bool            `json:"mps_available"`
	MPSBuilt          *bool            `json:"mps_built"`
	Deterministic     *bool            `json:"deterministic"`
	Distributed       map[string]*bool `json:"distributed"`
}

func (t *torchReport) installed() bool {
	return t != nil && t.ImportError == "" && t.Version != ""
}

func queryPython(ctx context.Context, runner sysexec.Runner, executable string, related []string) (*pythonReport, error) {
	relatedJSON, err := json.Marshal(related)
	if err != nil {
		return nil, fmt.Errorf("failed to encode package list: %w", err)
	}

	res, err := runner.Run(ctx, "", executable, "-c", pythonQueryScript, string(relatedJSON))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%s exited with status %d: %s", executable, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	line := lastLine(res.Stdout)
	var report pythonReport
	if err := json.Unmarshal(line, &report); err != nil {
		return nil, fmt.Errorf("failed to parse interpreter output: %w", err)
	}
	return &report, nil
}

// lastLine returns the final non-empty line; imports may print banners first.
func lastLine(out []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	return lines[len(lines)-1]
}

func (ps *probeSet) pythonEnvironment(ctx context.Context, m *facts.Map) error {
	report, err := ps.pythonQuery(ctx)
	if errors.Is(err, sysexec.ErrNotFound) {
		m.Set("Version", facts.String(facts.NotInstalled))
		m.Set("Executable", facts.String(ps.env.PythonExecutable))
		return nil
	}
	if err != nil {
		return err
	}

	m.Set("Version", facts.String(report.Version))
	m.Set("Implementation", facts.String(report.Implementation))
	m.Set("Compiler", facts.String(report.Compiler))
	m.Set("Build Date", facts.String(report.BuildDate))
	m.Set("Executable", facts.String(report.Executable))
	m.Set("Installed Related Packages", facts.Strings(report.Packages))
	return nil
}

func (ps *probeSet) framework(ctx context.Context, m *facts.Map) error {
	m.Set("Framework", facts.String("PyTorch"))

	report, err := ps.pythonQuery(ctx)
	if errors.Is(err, sysexec.ErrNotFound) {
		m.Set("Version", facts.String(facts.NotAvailable))
		return nil
	}
	if err != nil {
		return err
	}

	torch := report.Torch
	if !torch.installed() {
		m.Set("Version", facts.String(facts.NotInstalled))
		if torch != nil && torch.ImportError != "" {
			m.Set("Import Error", facts.String(torch.ImportError))
		}
		return nil
	}

	m.Set("Version", facts.String(torch.Version))
	m.Set("Default Dtype", facts.String(torch.DefaultDtype))
	m.Set("Number of Threads", facts.Int(int64(torch.NumThreads)))
	if torch.NumInteropThreads != nil {
		m.Set("Number of Interop Threads", facts.Int(int64(*torch.NumInteropThreads)))
	}
	m.Set("Has CUDA", facts.Bool(torch.CUDAAvailable))
	m.Set("CUDA Device Count", facts.Int(int64(torch.DeviceCount)))
	m.Set("Built With CUDA", stringPtr(torch.CUDAVersion))
	if torch.CuDNNVersion != nil {
		m.Set("cuDNN Version", facts.Int(int64(*torch.CuDNNVersion)))
	}
	m.Set("Has MKL", support(torch.HasMKL).Value())
	m.Set("Has OpenMP", support(torch.HasOpenMP).Value())
	m.Set("Has MKL-DNN", support(torch.HasMKLDNN).Value())
	m.Set("Deterministic Algorithms", support(torch.Deterministic).Value())

	distributed := facts.NewMap()
	for _, backend := range distributedBackends {
		distributed.Set(backend.label, support(torch.Distributed[backend.key]).Value())
	}
	m.Set("Distributed Backends", facts.Object(distributed))
	return nil
}

var distributedBackends = []struct{ key, label string }{
	{"nccl", "NCCL"},
	{"gloo", "Gloo"},
	{"mpi", "MPI"},
}

func support(b *bool) facts.Support {
	if b == nil {
		return facts.SupportUnknown
	}
	return facts.SupportOf(*b)
}

func stringPtr(s *string) facts.Value {
	if s == nil || *s == "" {
		return facts.String(facts.NotAvailable)
	}
	return facts.String(*s)
}

package collector

import (
	"context"
	"errors"

	"mlprobe/internal/facts"
	"mlprobe/internal/sysexec"
)

func (ps *probeSet) gpuInfo(ctx context.Context, m *facts.Map) error {
	report := ps.gpuDetect()
	torch := ps.torch(ctx)

	// Without NVML the framework's own view of the devices is the best we have.
	torchOnly := !report.NVMLOk && torch.installed()
	if torchOnly {
		m.Set("CUDA Available", facts.Bool(torch.CUDAAvailable))
	} else {
		m.Set("CUDA Available", facts.Bool(report.Available()))
	}
	if report.NVMLOk {
		m.Set("Driver Version", facts.String(nonEmpty(report.DriverVersion)))
		m.Set("CUDA Version", facts.String(nonEmpty(report.CUDAVersion)))
	} else if report.ErrorMessage != "" {
		m.Set("NVML Error", facts.String(report.ErrorMessage))
	}

	if nvcc := ps.env.Toolkit.NvccVersion(ctx); nvcc != "" {
		m.Set("NVCC Version", facts.String(nvcc))
	} else {
		m.Set("NVCC Version", facts.String(facts.NotInstalled))
	}

	switch {
	case report.Available():
		m.Set("GPU Count", facts.Int(int64(len(report.Devices))))
		m.Set("Devices", facts.Devices(report.Devices))
	case torchOnly && torch.CUDAAvailable:
		m.Set("GPU Count", facts.Int(int64(torch.DeviceCount)))
	}

	if torch.installed() {
		m.Set("ROCm/HIP Version", stringPtr(torch.HIPVersion))
		m.Set("MPS Available", support(torch.MPSAvailable).Value())
	}
	return nil
}

// backendChecks is the fixed capability catalog of the backends section.
var backendChecks = []struct {
	label string
	check func(ps *probeSet, ctx context.Context, t *torchReport) facts.Support
}{
	{"CUDA", func(ps *probeSet, _ context.Context, t *torchReport) facts.Support {
		report := ps.gpuDetect()
		switch {
		case report.Available():
			return facts.Supported
		case t.installed():
			return facts.SupportOf(t.CUDAAvailable)
		case report.NVMLOk:
			return facts.Unsupported
		default:
			return facts.SupportUnknown
		}
	}},
	{"cuDNN", torchSupport(func(t *torchReport) *bool { return t.CuDNNAvailable })},
	{"ROCm", torchSupport(func(t *torchReport) *bool {
		ok := t.HIPVersion != nil && *t.HIPVersion != ""
		return &ok
	})},
	{"MPS", torchSupport(func(t *torchReport) *bool { return t.MPSAvailable })},
	{"MKL", torchSupport(func(t *torchReport) *bool { return t.HasMKL })},
	{"MKL-DNN", torchSupport(func(t *torchReport) *bool { return t.HasMKLDNN })},
	{"OpenMP", torchSupport(func(t *torchReport) *bool { return t.HasOpenMP })},
	{"NCCL", torchSupport(func(t *torchReport) *bool { return t.Distributed["nccl"] })},
	{"Gloo", torchSupport(func(t *torchReport) *bool { return t.Distributed["gloo"] })},
	{"MPI", torchSupport(func(t *torchReport) *bool { return t.Distributed["mpi"] })},
}

func torchSupport(read func(*torchReport) *bool) func(*probeSet, context.Context, *torchReport) facts.Support {
	return func(_ *probeSet, _ context.Context, t *torchReport) facts.Support {
		if !t.installed() {
			return facts.SupportUnknown
		}
		return support(read(t))
	}
}

func (ps *probeSet) backends(ctx context.Context, m *facts.Map) error {
	torch := ps.torch(ctx)

	var supported []string
	for _, backend := range backendChecks {
		state := backend.check(ps, ctx, torch)
		m.Set(backend.label, state.Value())
		if state == facts.Supported {
			supported = append(supported, backend.label)
		}
	}
	m.Set("Supported Backends", facts.Strings(supported))
	return nil
}

// torch returns the framework report, or nil when the interpreter query
// failed for any reason.
func (ps *probeSet) torch(ctx context.Context) *torchReport {
	report, err := ps.pythonQuery(ctx)
	if err != nil {
		if !errors.Is(err, sysexec.ErrNotFound) {
			ps.env.Logger.Debug("collector.python.unavailable", "Interpreter query failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	}
	return report.Torch
}

func nonEmpty(s string) string {
	if s == "" {
		return facts.Unknown
	}
	return s
}

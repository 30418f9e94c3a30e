package collector

import (
	"context"
	"errors"
	"strings"

	"mlprobe/internal/facts"
	"mlprobe/internal/gpu"
)

// EnvironmentVariables are reported in the environment section, in order.
var EnvironmentVariables = []string{
	"CUDA_HOME",
	"CUDA_PATH",
	"CUDA_VISIBLE_DEVICES",
	"CUDA_DEVICE_ORDER",
	"PYTORCH_CUDA_ALLOC_CONF",
	"NCCL_DEBUG",
	"OMP_NUM_THREADS",
	"MKL_NUM_THREADS",
	"LD_LIBRARY_PATH",
	"PYTHONPATH",
	"VIRTUAL_ENV",
	"CONDA_DEFAULT_ENV",
}

func (ps *probeSet) environment(_ context.Context, m *facts.Map) error {
	for _, name := range EnvironmentVariables {
		value := ps.env.Getenv(name)
		if value == "" {
			value = facts.NotSet
		}
		m.Set(name, facts.String(value))
	}
	return nil
}

var errNoBuildInfo = errors.New("build information not embedded in binary")

func (ps *probeSet) build(_ context.Context, m *facts.Map) error {
	m.Set("NVML Support", facts.Bool(gpu.Supported()))

	info, ok := ps.env.BuildInfo()
	if !ok || info == nil {
		return errNoBuildInfo
	}

	m.Set("Module", facts.String(info.Main.Path))
	m.Set("Module Version", facts.String(nonEmpty(info.Main.Version)))
	m.Set("Go Version", facts.String(info.GoVersion))

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	if rev := settings["vcs.revision"]; rev != "" {
		m.Set("VCS Revision", facts.String(rev))
		m.Set("VCS Time", facts.String(nonEmpty(settings["vcs.time"])))
		m.Set("VCS Modified", facts.Bool(settings["vcs.modified"] == "true"))
	}
	m.Set("CGO Enabled", facts.Bool(settings["CGO_ENABLED"] == "1"))

	var tags []string
	if raw := settings["-tags"]; raw != "" {
		tags = strings.Split(raw, ",")
	}
	m.Set("Build Tags", facts.Strings(tags))
	return nil
}

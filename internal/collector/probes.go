package collector

import (
	"context"
	"sync"

	"mlprobe/internal/gpu"
)

// Section names in default display order.
const (
	SectionBasic       = "Basic Information"
	SectionRuntime     = "Runtime Environment"
	SectionPython      = "Python Environment"
	SectionOS          = "Operating System"
	SectionCPU         = "CPU Information"
	SectionMemory      = "Memory Information"
	SectionHardware    = "Hardware"
	SectionGPU         = "GPU Information"
	SectionBackends    = "Accelerator Backends"
	SectionFramework   = "ML Framework"
	SectionEnvironment = "Environment Variables"
	SectionBuild       = "Build Information"
)

// probeSet shares expensive collaborator results between probes of one run.
type probeSet struct {
	env Env

	gpuOnce   sync.Once
	gpuReport gpu.Report

	pythonOnce sync.Once
	python     *pythonReport
	pythonErr  error
}

// DefaultProbes returns the standard probe table.
func DefaultProbes(env Env) []Probe {
	ps := &probeSet{env: env.withDefaults()}
	return []Probe{
		{Name: "basic", Section: SectionBasic, Run: ps.basic},
		{Name: "runtime", Section: SectionRuntime, Run: ps.goRuntime},
		{Name: "python", Section: SectionPython, Run: ps.pythonEnvironment},
		{Name: "os", Section: SectionOS, Run: ps.operatingSystem},
		{Name: "cpu", Section: SectionCPU, Run: ps.cpuInfo},
		{Name: "memory", Section: SectionMemory, Run: ps.memoryInfo},
		{Name: "hardware", Section: SectionHardware, Run: ps.hardware},
		{Name: "gpu", Section: SectionGPU, Run: ps.gpuInfo},
		{Name: "backends", Section: SectionBackends, Run: ps.backends},
		{Name: "framework", Section: SectionFramework, Run: ps.framework},
		{Name: "env", Section: SectionEnvironment, Run: ps.environment},
		{Name: "build", Section: SectionBuild, Run: ps.build},
	}
}

func (ps *probeSet) gpuDetect() gpu.Report {
	ps.gpuOnce.Do(func() {
		ps.gpuReport = ps.env.GPU.Detect()
	})
	return ps.gpuReport
}

func (ps *probeSet) pythonQuery(ctx context.Context) (*pythonReport, error) {
	ps.pythonOnce.Do(func() {
		ps.python, ps.pythonErr = queryPython(ctx, ps.env.Runner, ps.env.PythonExecutable, ps.env.RelatedPackages)
	})
	return ps.python, ps.pythonErr
}

//go:build !cuda

package gpu

import (
	"mlprobe/internal/facts"
	"mlprobe/internal/logging"
)

// Detector reports NVML as unavailable in builds without the cuda tag.
type Detector struct {
	logger *logging.Logger
}

// NewDetector creates a GPU detector that skips NVML when CUDA support is disabled.
func NewDetector(logger *logging.Logger) *Detector {
	return &Detector{logger: logger}
}

// NewDetectorWithNVML is provided for API compatibility; NVML is ignored when CUDA is disabled.
func NewDetectorWithNVML(_ NVMLInterface, logger *logging.Logger) *Detector {
	return NewDetector(logger)
}

// Detect returns a report indicating that NVML is unavailable in the current build.
func (d *Detector) Detect() Report {
	d.logger.Debug("gpu.detect.disabled", "Skipping NVML detection (built without cuda tag)", nil)

	return Report{
		Devices:      []facts.DeviceRecord{},
		NVMLOk:       false,
		ErrorMessage: DisabledMessage,
	}
}

// SaveReport persists a GPU report to disk.
func (d *Detector) SaveReport(report Report, path string) error {
	return saveReportToFile(d.logger, report, path)
}

package gpu

import (
	"fmt"

	"mlprobe/internal/facts"
)

// DisabledMessage is reported by builds without the cuda tag.
const DisabledMessage = "NVML disabled: rebuild with -tags cuda"

// Source produces a GPU report. Detector is the production implementation.
type Source interface {
	Detect() Report
}

// Report is the result of one NVML query. An unusable driver is recorded as
// NVMLOk=false with ErrorMessage set, never returned as an error.
type Report struct {
	NVMLOk        bool                 `json:"nvml_ok"`
	DriverVersion string               `json:"driver_version,omitempty"`
	CUDAVersion   string               `json:"cuda_version,omitempty"`
	Devices       []facts.DeviceRecord `json:"devices"`
	ErrorMessage  string               `json:"error_message,omitempty"`
}

// Available reports whether at least one device was enumerated.
func (r Report) Available() bool {
	return r.NVMLOk && len(r.Devices) > 0
}

// ContainerToolkitReport represents NVIDIA Container Toolkit detection
type ContainerToolkitReport struct {
	DockerSupport  bool   `json:"docker_support"`
	ToolkitVersion string `json:"toolkit_version,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// FormatCUDAVersion converts the driver's integer form (12020) to "12.2".
func FormatCUDAVersion(v int) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("%d.%d", v/1000, (v%1000)/10)
}

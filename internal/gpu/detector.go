//go:build cuda

package gpu

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"mlprobe/internal/facts"
	"mlprobe/internal/logging"
)

// Detector enumerates GPUs through NVML
type Detector struct {
	nvml   NVMLInterface
	logger *logging.Logger
}

// NewDetector creates a new GPU detector
func NewDetector(logger *logging.Logger) *Detector {
	return &Detector{
		nvml:   NewRealNVML(),
		logger: logger,
	}
}

// NewDetectorWithNVML creates a detector with a custom NVML interface (for testing)
func NewDetectorWithNVML(nvmlInterface NVMLInterface, logger *logging.Logger) *Detector {
	return &Detector{
		nvml:   nvmlInterface,
		logger: logger,
	}
}

// Detect queries NVML for the driver, CUDA version and every device. Reads
// that fail for one device leave the corresponding fields unset.
func (d *Detector) Detect() Report {
	d.logger.Debug("gpu.detect.start", "Starting GPU detection", nil)

	report := Report{
		Devices: make([]facts.DeviceRecord, 0),
	}

	ret := d.nvml.Init()
	if ret != nvml.SUCCESS {
		report.ErrorMessage = fmt.Sprintf("Failed to initialize NVML: %v", nvml.ErrorString(ret))
		d.logger.Warn("gpu.nvml.init.failed", "NVML initialization failed", map[string]interface{}{
			"error": report.ErrorMessage,
		})
		return report
	}
	defer d.nvml.Shutdown()

	report.NVMLOk = true

	driverVersion, ret := d.nvml.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		d.logger.Warn("gpu.driver.version.failed", "Failed to get driver version", map[string]interface{}{
			"error": nvml.ErrorString(ret),
		})
	} else {
		report.DriverVersion = driverVersion
	}

	cudaVersion, ret := d.nvml.SystemGetCudaDriverVersion()
	if ret != nvml.SUCCESS {
		d.logger.Warn("gpu.cuda.version.failed", "Failed to get CUDA version", map[string]interface{}{
			"error": nvml.ErrorString(ret),
		})
	} else {
		report.CUDAVersion = FormatCUDAVersion(cudaVersion)
	}

	count, ret := d.nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		report.ErrorMessage = fmt.Sprintf("Failed to get device count: %v", nvml.ErrorString(ret))
		d.logger.Warn("gpu.device.count.failed", "Failed to get GPU count", map[string]interface{}{
			"error": report.ErrorMessage,
		})
		return report
	}

	d.logger.Debug("gpu.device.count", "Found GPU devices", map[string]interface{}{
		"count": count,
	})

	for i := 0; i < count; i++ {
		device, ret := d.nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			d.logger.Warn("gpu.device.handle.failed", "Failed to get device handle", map[string]interface{}{
				"index": i,
				"error": nvml.ErrorString(ret),
			})
			continue
		}

		record := readDevice(i, device)
		report.Devices = append(report.Devices, record)

		d.logger.Debug("gpu.device.detected", "GPU device detected", map[string]interface{}{
			"index":        i,
			"name":         record.Name,
			"memory_bytes": record.MemoryTotal,
		})
	}

	return report
}

func readDevice(index int, device DeviceInterface) facts.DeviceRecord {
	record := facts.DeviceRecord{
		Index: index,
		Extra: facts.NewMap(),
	}

	if name, ret := device.GetName(); ret == nvml.SUCCESS {
		record.Name = name
	}

	if major, minor, ret := device.GetCudaComputeCapability(); ret == nvml.SUCCESS {
		record.Capability = fmt.Sprintf("%d.%d", major, minor)
	}

	if mem, ret := device.GetMemoryInfo(); ret == nvml.SUCCESS {
		record.MemoryTotal = mem.Total
		record.MemoryFree = mem.Free
		record.MemoryUsed = mem.Used
		record.HasMemoryUsage = true
	}

	if uuid, ret := device.GetUUID(); ret == nvml.SUCCESS {
		record.Extra.Set("UUID", facts.String(uuid))
	}
	if cores, ret := device.GetNumGpuCores(); ret == nvml.SUCCESS {
		record.Extra.Set("GPU Cores", facts.Int(int64(cores)))
	}
	if clock, ret := device.GetMaxClockInfo(nvml.CLOCK_SM); ret == nvml.SUCCESS {
		record.Extra.Set("Clock Rate", facts.String(fmt.Sprintf("%d MHz", clock)))
	}
	if multi, ret := device.GetMultiGpuBoard(); ret == nvml.SUCCESS {
		record.Extra.Set("Is Multi GPU Board", facts.Bool(multi != 0))
	}

	return record
}

// SaveReport saves the GPU report to a JSON file
func (d *Detector) SaveReport(report Report, path string) error {
	return saveReportToFile(d.logger, report, path)
}

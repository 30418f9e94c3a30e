//go:build cuda

package gpu

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// MockNVML is a mock implementation of NVMLInterface for testing
type MockNVML struct {
	InitReturn                   nvml.Return
	ShutdownReturn               nvml.Return
	DeviceCount                  int
	DeviceCountReturn            nvml.Return
	DriverVersion                string
	DriverVersionReturn          nvml.Return
	CudaVersion                  int
	CudaVersionReturn            nvml.Return
	Devices                      []MockDevice
	DeviceGetHandleByIndexReturn nvml.Return
	shutdownCalls                int
}

// MockDevice represents a mock GPU device. Zero-valued Return fields mean
// SUCCESS, since nvml.SUCCESS is 0.
type MockDevice struct {
	Name              string
	NameReturn        nvml.Return
	UUID              string
	UUIDReturn        nvml.Return
	MemoryTotal       uint64
	MemoryFree        uint64
	MemoryUsed        uint64
	MemoryInfoReturn  nvml.Return
	Major, Minor      int
	CapabilityReturn  nvml.Return
	MaxSMClock        uint32
	ClockReturn       nvml.Return
	Cores             int
	CoresReturn       nvml.Return
	MultiGPUBoard     int
	MultiGPUReturn    nvml.Return
	requestedClockSet []nvml.ClockType
}

// NewMockNVML creates a new mock NVML instance
func NewMockNVML() *MockNVML {
	return &MockNVML{
		InitReturn:                   nvml.SUCCESS,
		ShutdownReturn:               nvml.SUCCESS,
		DeviceCountReturn:            nvml.SUCCESS,
		DriverVersionReturn:          nvml.SUCCESS,
		CudaVersionReturn:            nvml.SUCCESS,
		DeviceGetHandleByIndexReturn: nvml.SUCCESS,
		Devices:                      make([]MockDevice, 0),
	}
}

// Init mocks NVML initialization
func (m *MockNVML) Init() nvml.Return {
	return m.InitReturn
}

// Shutdown mocks NVML shutdown
func (m *MockNVML) Shutdown() nvml.Return {
	m.shutdownCalls++
	return m.ShutdownReturn
}

// DeviceGetCount mocks getting device count
func (m *MockNVML) DeviceGetCount() (int, nvml.Return) {
	return m.DeviceCount, m.DeviceCountReturn
}

// DeviceGetHandleByIndex mocks getting device handle
func (m *MockNVML) DeviceGetHandleByIndex(index int) (DeviceInterface, nvml.Return) {
	if index < 0 || index >= len(m.Devices) {
		return nil, nvml.ERROR_INVALID_ARGUMENT
	}
	return mockDeviceImpl{device: &m.Devices[index]}, m.DeviceGetHandleByIndexReturn
}

// SystemGetDriverVersion mocks getting driver version
func (m *MockNVML) SystemGetDriverVersion() (string, nvml.Return) {
	return m.DriverVersion, m.DriverVersionReturn
}

// SystemGetCudaDriverVersion mocks getting CUDA version
func (m *MockNVML) SystemGetCudaDriverVersion() (int, nvml.Return) {
	return m.CudaVersion, m.CudaVersionReturn
}

type mockDeviceImpl struct {
	device *MockDevice
}

func (m mockDeviceImpl) GetName() (string, nvml.Return) {
	return m.device.Name, m.device.NameReturn
}

func (m mockDeviceImpl) GetUUID() (string, nvml.Return) {
	return m.device.UUID, m.device.UUIDReturn
}

func (m mockDeviceImpl) GetMemoryInfo() (nvml.Memory, nvml.Return) {
	return nvml.Memory{
		Total: m.device.MemoryTotal,
		Free:  m.device.MemoryFree,
		Used:  m.device.MemoryUsed,
	}, m.device.MemoryInfoReturn
}

func (m mockDeviceImpl) GetCudaComputeCapability() (int, int, nvml.Return) {
	return m.device.Major, m.device.Minor, m.device.CapabilityReturn
}

func (m mockDeviceImpl) GetMaxClockInfo(clockType nvml.ClockType) (uint32, nvml.Return) {
	m.device.requestedClockSet = append(m.device.requestedClockSet, clockType)
	return m.device.MaxSMClock, m.device.ClockReturn
}

func (m mockDeviceImpl) GetNumGpuCores() (int, nvml.Return) {
	return m.device.Cores, m.device.CoresReturn
}

func (m mockDeviceImpl) GetMultiGpuBoard() (int, nvml.Return) {
	return m.device.MultiGPUBoard, m.device.MultiGPUReturn
}

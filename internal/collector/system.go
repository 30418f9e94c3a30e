package collector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"mlprobe/internal/facts"
)

const timestampLayout = "2006-01-02 15:04:05"

func (ps *probeSet) basic(_ context.Context, m *facts.Map) error {
	m.Set("Timestamp", facts.String(ps.env.Now().Format(timestampLayout)))
	if exe, err := ps.env.Executable(); err == nil {
		m.Set("Script", facts.String(exe))
	} else {
		m.Set("Script", facts.String(facts.Unknown))
	}
	if wd, err := ps.env.Getwd(); err == nil {
		m.Set("Working Directory", facts.String(wd))
	}
	m.Set("Process ID", facts.Int(int64(os.Getpid())))
	return nil
}

func (ps *probeSet) goRuntime(_ context.Context, m *facts.Map) error {
	m.Set("Go Version", facts.String(runtime.Version()))
	m.Set("Compiler", facts.String(runtime.Compiler))
	m.Set("GOOS", facts.String(runtime.GOOS))
	m.Set("GOARCH", facts.String(runtime.GOARCH))
	m.Set("GOMAXPROCS", facts.Int(int64(runtime.GOMAXPROCS(0))))
	m.Set("NumCPU", facts.Int(int64(runtime.NumCPU())))
	return nil
}

func (ps *probeSet) operatingSystem(ctx context.Context, m *facts.Map) error {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		m.Set("System", facts.String(titleCase(runtime.GOOS)))
		return fmt.Errorf("failed to read host info: %w", err)
	}

	m.Set("System", facts.String(titleCase(info.OS)))
	m.Set("Release", facts.String(info.KernelVersion))
	m.Set("Version", facts.String(info.PlatformVersion))
	m.Set("Machine", facts.String(info.KernelArch))
	m.Set("Architecture", facts.String(fmt.Sprintf("%dbit", strconv.IntSize)))
	m.Set("Platform", facts.String(strings.TrimSpace(info.Platform+" "+info.PlatformVersion)))
	m.Set("Node", facts.String(info.Hostname))
	if info.VirtualizationSystem != "" {
		m.Set("Virtualization", facts.String(info.VirtualizationSystem+" "+info.VirtualizationRole))
	}
	m.Set("Uptime", facts.String((time.Duration(info.Uptime) * time.Second).String()))

	if runtime.GOOS == "linux" {
		if data, err := ps.env.ReadFile("/etc/os-release"); err == nil {
			if dist := distribution(data); dist != "" {
				m.Set("Distribution", facts.String(dist))
			}
		}
	}
	return nil
}

// distribution renders NAME and VERSION from an os-release file.
func distribution(data []byte) string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || strings.HasPrefix(key, "#") {
			continue
		}
		values[key] = strings.Trim(value, `"'`)
	}
	if len(values) == 0 {
		return ""
	}
	name := values["NAME"]
	if name == "" {
		name = facts.Unknown
	}
	return strings.TrimSpace(name + " " + values["VERSION"])
}

func (ps *probeSet) cpuInfo(ctx context.Context, m *facts.Map) error {
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil && physical > 0 {
		m.Set("Physical Cores", facts.Int(int64(physical)))
	} else {
		m.Set("Physical Cores", facts.String(facts.Unknown))
	}
	if logical, err := cpu.CountsWithContext(ctx, true); err == nil && logical > 0 {
		m.Set("Logical Cores", facts.Int(int64(logical)))
	} else {
		m.Set("Logical Cores", facts.Int(int64(runtime.NumCPU())))
	}

	infos, err := cpu.InfoWithContext(ctx)
	if err == nil && len(infos) > 0 {
		if model := strings.TrimSpace(infos[0].ModelName); model != "" {
			m.Set("Model", facts.String(model))
		}
		if infos[0].Mhz > 0 {
			m.Set("CPU Frequency (Current)", facts.String(fmt.Sprintf("%.2f MHz", infos[0].Mhz)))
		} else {
			m.Set("CPU Frequency (Current)", facts.String(facts.Unknown))
		}
	}

	percents, err := cpu.PercentWithContext(ctx, ps.env.CPUSampleInterval, false)
	if err != nil {
		return fmt.Errorf("failed to sample cpu usage: %w", err)
	}
	if len(percents) > 0 {
		m.Set("CPU Usage", facts.String(fmt.Sprintf("%.1f%%", percents[0])))
	}
	return nil
}

func (ps *probeSet) memoryInfo(ctx context.Context, m *facts.Map) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to read memory info: %w", err)
	}
	m.Set("Total", facts.String(facts.FormatGB(vm.Total)))
	m.Set("Available", facts.String(facts.FormatGB(vm.Available)))
	m.Set("Used", facts.String(facts.FormatGBPercent(vm.Used, vm.UsedPercent)))
	m.Set("Free", facts.String(facts.FormatGB(vm.Free)))

	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to read swap info: %w", err)
	}
	m.Set("Swap Total", facts.String(facts.FormatGB(swap.Total)))
	m.Set("Swap Used", facts.String(facts.FormatGBPercent(swap.Used, swap.UsedPercent)))
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return facts.Unknown
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

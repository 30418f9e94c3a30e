package facts

import "fmt"

const bytesPerGB = 1024 * 1024 * 1024

// DeviceRecord describes one accelerator.
type DeviceRecord struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Capability  string `json:"capability,omitempty"`
	MemoryTotal uint64 `json:"memory_total_bytes,omitempty"`
	MemoryFree  uint64 `json:"memory_free_bytes,omitempty"`
	MemoryUsed  uint64 `json:"memory_used_bytes,omitempty"`
	// HasMemoryUsage is false when only the total could be read.
	HasMemoryUsage bool `json:"-"`
	// Extra holds optional properties in the order they were read.
	Extra *Map `json:"extra,omitempty"`
}

// Value converts the record to a map value.
func (d DeviceRecord) Value() Value {
	m := NewMap()
	m.Set("Index", Int(int64(d.Index)))
	m.Set("Name", stringOrUnknown(d.Name))
	m.Set("Capability", stringOrUnknown(d.Capability))
	if d.MemoryTotal > 0 {
		m.Set("Memory Total", String(FormatGB(d.MemoryTotal)))
	}
	if d.HasMemoryUsage {
		m.Set("Memory Free", String(FormatGB(d.MemoryFree)))
		m.Set("Memory Used", String(FormatGB(d.MemoryUsed)))
	}
	for _, key := range d.Extra.Keys() {
		v, _ := d.Extra.Get(key)
		m.Set(key, v)
	}
	return Object(m)
}

// Devices converts records to a list value.
func Devices(records []DeviceRecord) Value {
	items := make([]Value, 0, len(records))
	for _, record := range records {
		items = append(items, record.Value())
	}
	return List(items...)
}

// FormatGB renders a byte count in gibibytes with two decimals.
func FormatGB(bytes uint64) string {
	return fmt.Sprintf("%.2f GB", float64(bytes)/bytesPerGB)
}

// FormatGBPercent renders a byte count with its share of the whole, e.g. "3.20 GB (41.5%)".
func FormatGBPercent(bytes uint64, percent float64) string {
	return fmt.Sprintf("%s (%.1f%%)", FormatGB(bytes), percent)
}

func stringOrUnknown(s string) Value {
	if s == "" {
		return String(Unknown)
	}
	return String(s)
}

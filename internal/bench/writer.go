package bench

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"mlprobe/internal/fsutil"
	"mlprobe/internal/logging"
)

// Writer persists benchmark results.
type Writer struct {
	logger *logging.Logger
}

// NewWriter creates a new result writer
func NewWriter(logger *logging.Logger) *Writer {
	return &Writer{
		logger: logger,
	}
}

// WriteTextfile writes the result in the Prometheus text exposition format,
// for the node exporter textfile collector.
func (w *Writer) WriteTextfile(result Result, path string) error {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"device": result.Device}

	gauges := []struct {
		name  string
		help  string
		value float64
	}{
		{"mlprobe_bench_gflops", "Measured matrix multiply throughput in GFLOPs", result.GFLOPs},
		{"mlprobe_bench_matrix_size", "Edge length of the square operands", float64(result.Size)},
		{"mlprobe_bench_iterations", "Timed multiply iterations", float64(result.Iterations)},
		{"mlprobe_bench_duration_seconds", "Wall time of the timed iterations", result.Elapsed.Seconds()},
		{"mlprobe_bench_timestamp_seconds", "Unix time the run finished", float64(result.Timestamp.Unix())},
	}
	for _, g := range gauges {
		gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: g.name, Help: g.help}, []string{"device"})
		if err := registry.Register(gauge); err != nil {
			return fmt.Errorf("failed to register %s: %w", g.name, err)
		}
		gauge.With(labels).Set(g.value)
	}

	if err := fsutil.EnsureParentDirectory(path); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	w.logger.Debug("bench.metrics.written", "Wrote metrics textfile", map[string]interface{}{
		"path": path,
	})
	return nil
}

// AppendHistory appends the result as one JSON line.
func (w *Writer) AppendHistory(result Result, path string) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.EnsureParentDirectory(path); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fsutil.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer fsutil.CloseWithError(file.Close, w.logger, path)

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

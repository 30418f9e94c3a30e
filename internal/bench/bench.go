// Package bench measures floating point throughput with a dense matrix multiply.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"mlprobe/internal/gpu"
	"mlprobe/internal/logging"
)

// ErrNoAccelerator is returned when a run requires a GPU and none is visible.
var ErrNoAccelerator = errors.New("NVIDIA GPU not available; install an NVIDIA GPU and driver to proceed")

// Config sizes a benchmark run.
type Config struct {
	// Size is n for the n×n operands.
	Size       int
	Iterations int
	Warmup     int
	// RequireGPU aborts the run when no accelerator is detected.
	RequireGPU bool
	// Seed makes the operands reproducible.
	Seed uint64
}

// Result is the outcome of one run.
type Result struct {
	Timestamp  time.Time     `json:"ts"`
	Device     string        `json:"device"`
	Size       int           `json:"size"`
	Iterations int           `json:"iterations"`
	Warmup     int           `json:"warmup"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	GFLOPs     float64       `json:"gflops"`
}

// String renders the headline figure.
func (r Result) String() string {
	return fmt.Sprintf("Max FLOPs: %.2f GFLOPs", r.GFLOPs)
}

// Runner executes benchmarks.
type Runner struct {
	source gpu.Source
	logger *logging.Logger
	now    func() time.Time
}

// NewRunner creates a runner. source is consulted only for RequireGPU.
func NewRunner(source gpu.Source, logger *logging.Logger) *Runner {
	return &Runner{source: source, logger: logger, now: time.Now}
}

// MaxSize bounds the matrix dimension so that Size*Size stays addressable.
const MaxSize = 8192

// Validate checks the run parameters.
func (c Config) Validate() error {
	switch {
	case c.Size < 1 || c.Size > MaxSize:
		return fmt.Errorf("size must be between 1 and %d, got %d", MaxSize, c.Size)
	case c.Iterations < 1:
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	case c.Warmup < 0:
		return fmt.Errorf("warmup must not be negative, got %d", c.Warmup)
	}
	return nil
}

// Run multiplies two random float32 matrices Warmup times untimed, then
// Iterations times timed. The work runs on the CPU.
func (r *Runner) Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	device := "cpu"
	if cfg.RequireGPU {
		report := r.source.Detect()
		if !report.Available() {
			r.logger.Error("bench.gpu.missing", "Benchmark requires a GPU", map[string]interface{}{
				"nvml_error": report.ErrorMessage,
			})
			return Result{}, ErrNoAccelerator
		}
		device = report.Devices[0].Name
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	a := randomMatrix(cfg.Size, rng)
	b := randomMatrix(cfg.Size, rng)
	c := newMatrix(cfg.Size)

	r.logger.Info("bench.start", "Starting matrix multiply benchmark", map[string]interface{}{
		"size":       cfg.Size,
		"iterations": cfg.Iterations,
		"warmup":     cfg.Warmup,
	})

	for i := 0; i < cfg.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("benchmark canceled during warmup: %w", err)
		}
		multiply(a, b, c)
	}

	start := time.Now()
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("benchmark canceled: %w", err)
		}
		multiply(a, b, c)
	}
	elapsed := time.Since(start)

	result := Result{
		Timestamp:  r.now().UTC(),
		Device:     device,
		Size:       cfg.Size,
		Iterations: cfg.Iterations,
		Warmup:     cfg.Warmup,
		Elapsed:    elapsed,
		GFLOPs:     GFLOPs(cfg.Size, cfg.Iterations, elapsed),
	}

	r.logger.Info("bench.done", "Benchmark finished", map[string]interface{}{
		"gflops":     result.GFLOPs,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	return result, nil
}

// GFLOPs converts a timing into throughput: an n×n multiply costs 2n³
// floating point operations.
func GFLOPs(n, iterations int, elapsed time.Duration) float64 {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return 0
	}
	size := float64(n)
	return 2 * size * size * size * float64(iterations) / seconds * 1e-9
}

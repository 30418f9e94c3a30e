// Package collector builds a facts.Snapshot by running a table of probes.
package collector

import (
	"context"
	"fmt"
	"time"

	"mlprobe/internal/facts"
	"mlprobe/internal/logging"
)

// Probe records the facts of one section.
type Probe struct {
	// Name identifies the probe in configuration and logs.
	Name    string
	Section string
	// Run records facts into m. Facts recorded before an error or panic are kept.
	Run func(ctx context.Context, m *facts.Map) error
}

// Collector runs probes in table order.
type Collector struct {
	probes   []Probe
	logger   *logging.Logger
	now      func() time.Time
	disabled map[string]bool
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the collection timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// WithDisabled skips the named probes.
func WithDisabled(names ...string) Option {
	return func(c *Collector) {
		for _, name := range names {
			c.disabled[name] = true
		}
	}
}

// New creates a collector for the given probe table.
func New(probes []Probe, logger *logging.Logger, opts ...Option) *Collector {
	c := &Collector{
		probes:   probes,
		logger:   logger,
		now:      time.Now,
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProbeNames lists the probe names in table order.
func (c *Collector) ProbeNames() []string {
	names := make([]string, 0, len(c.probes))
	for _, p := range c.probes {
		names = append(names, p.Name)
	}
	return names
}

// Collect runs every enabled probe and returns the frozen snapshot. It never
// fails: a probe error or panic is logged and the remaining probes still run.
func (c *Collector) Collect(ctx context.Context) *facts.Snapshot {
	b := facts.NewSnapshotBuilder(c.now())

	for _, probe := range c.probes {
		if c.disabled[probe.Name] {
			c.logger.Debug("collector.probe.disabled", "Probe disabled by configuration", map[string]interface{}{
				"probe": probe.Name,
			})
			continue
		}
		if err := ctx.Err(); err != nil {
			c.logger.Warn("collector.canceled", "Collection canceled", map[string]interface{}{
				"probe": probe.Name,
				"error": err.Error(),
			})
			break
		}

		start := time.Now()
		err := runProbe(ctx, probe, b.Section(probe.Section))
		if err != nil {
			c.logger.Warn("collector.probe.failed", "Probe failed; keeping partial facts", map[string]interface{}{
				"probe":   probe.Name,
				"section": probe.Section,
				"error":   err.Error(),
			})
			continue
		}
		c.logger.Debug("collector.probe.done", "Probe finished", map[string]interface{}{
			"probe":       probe.Name,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	return b.Build()
}

func runProbe(ctx context.Context, probe Probe, m *facts.Map) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return probe.Run(ctx, m)
}

//go:build !linux

package collector

import (
	"context"

	"mlprobe/internal/facts"
)

func (ps *probeSet) hardware(_ context.Context, m *facts.Map) error {
	m.Set("DMI", facts.String(facts.NotAvailable))
	return nil
}

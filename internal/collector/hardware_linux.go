//go:build linux

package collector

import (
	"context"

	"github.com/jaypipes/ghw"

	"mlprobe/internal/facts"
)

// hardware reads DMI data from sysfs under SysRoot. Some fields need root;
// unreadable ones come back as "unknown" and are omitted.
func (ps *probeSet) hardware(_ context.Context, m *facts.Map) error {
	opts := []*ghw.WithOption{ghw.WithChroot(ps.env.SysRoot), ghw.WithDisableWarnings()}

	if product, err := ghw.Product(opts...); err == nil {
		setKnown(m, "Product Name", product.Name)
		setKnown(m, "Product Vendor", product.Vendor)
		setKnown(m, "Product Version", product.Version)
		setKnown(m, "Product Family", product.Family)
	} else {
		ps.env.Logger.Debug("collector.dmi.product_failed", "DMI product read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if board, err := ghw.Baseboard(opts...); err == nil {
		setKnown(m, "Board Name", board.Product)
		setKnown(m, "Board Vendor", board.Vendor)
		setKnown(m, "Board Version", board.Version)
	} else {
		ps.env.Logger.Debug("collector.dmi.baseboard_failed", "DMI baseboard read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if bios, err := ghw.BIOS(opts...); err == nil {
		setKnown(m, "BIOS Vendor", bios.Vendor)
		setKnown(m, "BIOS Version", bios.Version)
		setKnown(m, "BIOS Date", bios.Date)
	} else {
		ps.env.Logger.Debug("collector.dmi.bios_failed", "DMI BIOS read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if m.Len() == 0 {
		m.Set("DMI", facts.String(facts.NotAvailable))
	}
	return nil
}

// setKnown skips empty values and ghw's "unknown" placeholder.
func setKnown(m *facts.Map, key, value string) {
	if value != "" && value != "unknown" {
		m.Set(key, facts.String(value))
	}
}

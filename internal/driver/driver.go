// Package driver runs the single-threaded, cooperative tick loop shared
// by both daemons: rebuild inventory, (switch-only) reload the bridge
// forwarding database, emit frames, sleep, repeat until SIGINT.
package driver

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jaist-htip/htip/internal/config"
	"github.com/jaist-htip/htip/internal/fdb"
	"github.com/jaist-htip/htip/internal/frame"
	"github.com/jaist-htip/htip/internal/inventory"
)

// Mode selects agent-mode (device-info only) or switch-mode (device-info
// plus link-info, bridge FDB reload) tick behavior.
type Mode int

const (
	ModeAgent Mode = iota
	ModeSwitch
)

// TickInterval is the inter-tick sleep the specification mandates.
const TickInterval = 30 * time.Second

// Driver owns inventory rebuilding, FDB reloads (switch mode), frame
// emission, and the open/close asymmetry between the two daemon modes.
type Driver struct {
	Mode       Mode
	BridgeName string
	Identity   config.Identity
	Source     inventory.Source
	Opener     inventory.Opener
	FDBReader  fdb.Reader
	Interval   time.Duration
	Warn       func(format string, args ...any)

	inv     *inventory.Inventory
	handles map[string]inventory.Handle
}

func (d *Driver) warn(format string, args ...any) {
	if d.Warn != nil {
		d.Warn(format, args...)
	}
}

// Run executes the tick loop until SIGINT, then shuts down cleanly and
// returns nil. It never spawns an additional goroutine of its own; the
// only concurrency is the runtime-fed signal channel, which os/signal
// requires regardless of program structure.
func (d *Driver) Run() error {
	d.inv = inventory.New()
	d.handles = make(map[string]inventory.Handle)
	if d.Interval <= 0 {
		d.Interval = TickInterval
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	for {
		if err := d.tick(); err != nil {
			d.warn("tick failed: %v", err)
		}

		select {
		case <-sigCh:
			d.shutdown()
			return nil
		case <-time.After(d.Interval):
		}
	}
}

func (d *Driver) tick() error {
	if err := d.inv.Build(d.Source); err != nil {
		d.warn("inventory build: %v", err)
	}

	switch d.Mode {
	case ModeSwitch:
		return d.switchTick()
	default:
		return d.agentTick()
	}
}

func (d *Driver) agentTick() error {
	present := make(map[string]bool, d.inv.Len())
	for _, iface := range d.inv.Interfaces() {
		present[iface.Name] = true
		if existing, ok := d.handles[iface.Name]; ok {
			d.inv.SetHandle(iface.Name, existing)
			continue
		}
		h, err := d.Opener.Open(iface.Name)
		if err != nil {
			d.warn("open %s: %v", iface.Name, err)
			continue
		}
		d.handles[iface.Name] = h
		d.inv.SetHandle(iface.Name, h)
	}

	for name, h := range d.handles {
		if !present[name] {
			h.Close()
			delete(d.handles, name)
		}
	}

	return frame.BuildDeviceInfo(d.inv.Interfaces(), d.Identity, frame.Warnf(d.warn))
}

func (d *Driver) switchTick() error {
	if err := d.inv.OpenAll(d.Opener); err != nil {
		d.warn("open handles: %v", err)
	}
	defer d.inv.CloseAll()

	table := fdb.NewTable(fdb.MaxEntries)
	if err := table.Load(d.FDBReader, d.BridgeName); err != nil {
		return fmt.Errorf("load fdb: %w", err)
	}

	for _, iface := range d.inv.Interfaces() {
		d.inv.SetPortNo(iface.Name, table.PortnoOf(iface.MAC))
	}

	return frame.BuildDeviceLinkInfo(d.inv.Interfaces(), table, d.Identity, frame.Warnf(d.warn))
}

func (d *Driver) shutdown() {
	for name, h := range d.handles {
		h.Close()
		delete(d.handles, name)
		d.inv.SetHandle(name, nil)
	}
	d.inv.CloseAll()
}

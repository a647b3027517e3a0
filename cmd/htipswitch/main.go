// Command htipswitch broadcasts HTIP device-info and link-info LLDP
// frames for every interface bridged onto a named Linux bridge, once
// per tick, until interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/jaist-htip/htip/internal/cliflags"
	"github.com/jaist-htip/htip/internal/config"
	"github.com/jaist-htip/htip/internal/driver"
	"github.com/jaist-htip/htip/internal/fdb"
	"github.com/jaist-htip/htip/internal/inventory"
	"github.com/jaist-htip/htip/internal/logging"
	"github.com/jaist-htip/htip/internal/transmit"
)

const program = "htipswitch"

func main() {
	opts, err := cliflags.ParseSwitch(os.Args[1:])
	if err != nil {
		cliflags.Exit(program, err.Error())
	}
	if opts.ShowHelp {
		fmt.Println(cliflags.Usage(program))
		return
	}

	log := logging.Default(opts.Verbose)

	id, err := config.Load(config.RoleSwitch, opts.ConfigPath)
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	log.Infof("identity: category=%s manufacturer=%q model=%s/%s", id.DeviceCategory, id.ManufacturerCode, id.ModelName, id.ModelNumber)
	log.Infof("bridge: %s", opts.InterfaceName)

	if opts.Verbose {
		printInventory(log, inventory.LinuxSource{})
	}

	d := &driver.Driver{
		Mode:       driver.ModeSwitch,
		BridgeName: opts.InterfaceName,
		Identity:   id,
		Source:     inventory.LinuxSource{},
		Opener:     transmit.Opener{},
		FDBReader:  fdb.SysfsReader{},
		Warn:       log.Warnf,
	}

	log.Infof("htipswitch starting, tick interval %s", driver.TickInterval)
	if err := d.Run(); err != nil {
		log.Errorf("run: %v", err)
		os.Exit(1)
	}
	log.Infof("htipswitch stopped")
}

// printInventory performs a one-time interface discovery and logs the
// resolved table, mirroring l2switch.c's unconditional print_ifinfo() but
// gated behind -v since this expansion treats it as a debug affordance.
func printInventory(log *logging.Logger, source inventory.Source) {
	ifaces, err := source.Discover()
	if err != nil {
		log.Warnf("inventory dump: %v", err)
		return
	}
	log.Infof("resolved interface inventory:\n%s", inventory.DumpTable(ifaces))
}

// Command htipagent broadcasts HTIP device-info LLDP frames on every
// usable local interface, once per tick, until interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/jaist-htip/htip/internal/cliflags"
	"github.com/jaist-htip/htip/internal/config"
	"github.com/jaist-htip/htip/internal/driver"
	"github.com/jaist-htip/htip/internal/inventory"
	"github.com/jaist-htip/htip/internal/logging"
	"github.com/jaist-htip/htip/internal/transmit"
)

const program = "htipagent"

func main() {
	opts, err := cliflags.ParseAgent(os.Args[1:])
	if err != nil {
		cliflags.Exit(program, err.Error())
	}
	if opts.ShowHelp {
		fmt.Println(cliflags.Usage(program))
		return
	}

	log := logging.Default(opts.Verbose)

	id, err := config.Load(config.RoleAgent, opts.ConfigPath)
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	log.Infof("identity: category=%s manufacturer=%q model=%s/%s", id.DeviceCategory, id.ManufacturerCode, id.ModelName, id.ModelNumber)

	if opts.InterfaceName != "" {
		log.Infof("advisory interface %s requested; discovering all usable interfaces regardless", opts.InterfaceName)
	}

	if opts.Verbose {
		printInventory(log, inventory.LinuxSource{})
	}

	d := &driver.Driver{
		Mode:     driver.ModeAgent,
		Identity: id,
		Source:   inventory.LinuxSource{},
		Opener:   transmit.Opener{},
		Warn:     log.Warnf,
	}

	log.Infof("htipagent starting, tick interval %s", driver.TickInterval)
	if err := d.Run(); err != nil {
		log.Errorf("run: %v", err)
		os.Exit(1)
	}
	log.Infof("htipagent stopped")
}

// printInventory performs a one-time interface discovery and logs the
// resolved table, mirroring l2agent.c's unconditional print_ifinfo() but
// gated behind -v since this expansion treats it as a debug affordance.
func printInventory(log *logging.Logger, source inventory.Source) {
	ifaces, err := source.Discover()
	if err != nil {
		log.Warnf("inventory dump: %v", err)
		return
	}
	log.Infof("resolved interface inventory:\n%s", inventory.DumpTable(ifaces))
}

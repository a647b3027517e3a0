// Package inventory enumerates the local host's usable L2 interfaces,
// classifies their IANA link type, and owns their transmit handles.
package inventory

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// MaxInterfaces bounds the inventory at the specification's fixed cap,
// matching the reference implementation's IFINFO_LIST_MAX_SIZE.
const MaxInterfaces = 20

// IANA link-type values. Only Ethernet and IEEE-802.11 are distinguished;
// everything else collapses to Other and is excluded from the inventory.
const (
	LinkTypeOther          uint32 = 1
	LinkTypeEthernetCSMACD uint32 = 6
	LinkTypeIEEE80211      uint32 = 71
)

// PortInvalid mirrors fdb.PortInvalid for interfaces with no bridge port.
const PortInvalid uint16 = 0xFFFF

var (
	// ErrInventoryFull is returned when a discovered interface would
	// push the inventory past MaxInterfaces.
	ErrInventoryFull = errors.New("inventory: full")
	// ErrOpenFailed is returned by OpenAll when a transmit handle could
	// not be opened for an interface.
	ErrOpenFailed = errors.New("inventory: open failed")
)

// Handle is the opaque transmit handle C4 attaches to an interface. The
// inventory package never looks inside it.
type Handle interface {
	Close() error
}

// Opener opens a transmit handle for a named interface. internal/transmit
// implements this over a pcap live handle.
type Opener interface {
	Open(ifaceName string) (Handle, error)
}

// Interface is one usable L2 interface record.
type Interface struct {
	Name     string
	IPv4     net.IP
	MAC      [6]byte
	LinkType uint32
	PortNo   uint16
	Handle   Handle
}

// Source discovers the raw candidate interfaces for the local platform.
// Implementations live in the platform-specific files in this package.
type Source interface {
	Discover() ([]Interface, error)
}

// Inventory is the rebuilt-every-tick list of usable interfaces.
type Inventory struct {
	interfaces []Interface
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{}
}

// Build discards any previous contents and populates the inventory from
// source, capped at MaxInterfaces. Interfaces beyond the cap are dropped
// with a logged warning by the caller (ErrInventoryFull is returned to let
// the caller decide how noisy to be, matching the spec's "Cap total
// inventory at 20").
func (inv *Inventory) Build(source Source) error {
	inv.interfaces = nil

	discovered, err := source.Discover()
	if err != nil {
		return fmt.Errorf("inventory: discover: %w", err)
	}

	var overflowed bool
	for _, iface := range discovered {
		if len(inv.interfaces) >= MaxInterfaces {
			overflowed = true
			break
		}
		inv.interfaces = append(inv.interfaces, iface)
	}
	if overflowed {
		return fmt.Errorf("%w: discovered more than %d usable interfaces", ErrInventoryFull, MaxInterfaces)
	}
	return nil
}

// Interfaces returns the current inventory in discovery order.
func (inv *Inventory) Interfaces() []Interface {
	return inv.interfaces
}

// Len reports the current inventory size.
func (inv *Inventory) Len() int {
	return len(inv.interfaces)
}

// SetPortNo records the bridge port number resolved for name by C2,
// leaving PortInvalid when name has no entry.
func (inv *Inventory) SetPortNo(name string, portNo uint16) {
	for i := range inv.interfaces {
		if inv.interfaces[i].Name == name {
			inv.interfaces[i].PortNo = portNo
			return
		}
	}
}

// SetHandle attaches an already-open transmit handle to the named
// interface, used by the agent driver to carry handles across ticks
// instead of reopening them every 30 seconds.
func (inv *Inventory) SetHandle(name string, h Handle) bool {
	for i := range inv.interfaces {
		if inv.interfaces[i].Name == name {
			inv.interfaces[i].Handle = h
			return true
		}
	}
	return false
}

// OpenAll opens a transmit handle for every interface via opener. An
// interface that fails to open keeps a nil Handle rather than aborting
// the whole inventory; callers decide whether a single ErrOpenFailed
// should fail the tick.
func (inv *Inventory) OpenAll(opener Opener) error {
	var firstErr error
	for i := range inv.interfaces {
		h, err := opener.Open(inv.interfaces[i].Name)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s: %v", ErrOpenFailed, inv.interfaces[i].Name, err)
			}
			continue
		}
		inv.interfaces[i].Handle = h
	}
	return firstErr
}

// LinkTypeName returns a human label for an IANA link type, for diagnostics.
func LinkTypeName(linkType uint32) string {
	switch linkType {
	case LinkTypeEthernetCSMACD:
		return "ethernet-csmacd"
	case LinkTypeIEEE80211:
		return "ieee-802.11"
	default:
		return fmt.Sprintf("other(%d)", linkType)
	}
}

// DumpTable renders the resolved inventory as a one-line-per-interface
// table (name, MAC, link type, IPv4, bridge port), for the startup
// verbose dump grounded on the reference daemons' print_ifinfo().
func DumpTable(ifaces []Interface) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-17s %-16s %-15s %s\n", "INTERFACE", "MAC", "LINK TYPE", "IPV4", "PORT")
	for _, iface := range ifaces {
		port := "-"
		if iface.PortNo != PortInvalid {
			port = fmt.Sprintf("%d", iface.PortNo)
		}
		ip := "-"
		if iface.IPv4 != nil {
			ip = iface.IPv4.String()
		}
		mac := net.HardwareAddr(iface.MAC[:]).String()
		fmt.Fprintf(&b, "%-10s %-17s %-16s %-15s %s\n", iface.Name, mac, LinkTypeName(iface.LinkType), ip, port)
	}
	return b.String()
}

// CloseAll closes every open transmit handle and clears the inventory.
func (inv *Inventory) CloseAll() {
	for i := range inv.interfaces {
		if inv.interfaces[i].Handle != nil {
			inv.interfaces[i].Handle.Close()
			inv.interfaces[i].Handle = nil
		}
	}
	inv.interfaces = nil
}

//go:build linux

package inventory

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/gopacket/pcap"
)

const sysClassNet = "/sys/class/net"

// arphrdEther and arphrdIEEE80211 are the sysfs "type" values for wired
// Ethernet and 802.11 interfaces (linux/if_arp.h's ARPHRD_ETHER/ARPHRD_IEEE80211).
const (
	arphrdEther     = 1
	arphrdIEEE80211 = 801
)

const loopbackName = "lo"

// LinuxSource discovers usable interfaces via sysfs, matching the kernel's
// own notion of link type and bridge membership rather than guessing from
// interface naming conventions.
type LinuxSource struct{}

// Discover implements Source.
func (LinuxSource) Discover() ([]Interface, error) {
	entries, err := os.ReadDir(sysClassNet)
	if err != nil {
		return nil, err
	}

	var result []Interface
	for _, entry := range entries {
		name := entry.Name()
		if name == loopbackName {
			continue
		}
		if isBridgeMaster(name) {
			continue
		}

		linkType, ok := classifyLinkType(name)
		if !ok {
			continue
		}

		iface, err := net.InterfaceByName(name)
		if err != nil || len(iface.HardwareAddr) != 6 {
			continue
		}
		if !canOpenInterface(name) {
			continue
		}

		var mac [6]byte
		copy(mac[:], iface.HardwareAddr)

		result = append(result, Interface{
			Name:     name,
			IPv4:     firstIPv4(iface),
			MAC:      mac,
			LinkType: linkType,
			PortNo:   PortInvalid,
		})
	}

	return result, nil
}

func classifyLinkType(name string) (uint32, bool) {
	typeData, err := os.ReadFile(filepath.Join(sysClassNet, name, "type"))
	if err != nil {
		return 0, false
	}
	arphrd, err := strconv.Atoi(strings.TrimSpace(string(typeData)))
	if err != nil {
		return 0, false
	}

	_, hasWireless := os.Stat(filepath.Join(sysClassNet, name, "wireless"))
	isWireless := hasWireless == nil

	switch {
	case arphrd == arphrdIEEE80211 || (arphrd == arphrdEther && isWireless):
		return LinkTypeIEEE80211, true
	case arphrd == arphrdEther:
		return LinkTypeEthernetCSMACD, true
	default:
		return 0, false
	}
}

func isBridgeMaster(name string) bool {
	_, err := os.Stat(filepath.Join(sysClassNet, name, "bridge"))
	return err == nil
}

func firstIPv4(iface *net.Interface) net.IP {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4
		}
	}
	return nil
}

// canOpenInterface confirms pcap can open name before it's placed in the
// inventory, the same guard the teacher's platform source applied.
func canOpenInterface(name string) bool {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return false
	}
	for _, dev := range devices {
		if dev.Name == name {
			return true
		}
	}
	return false
}

//go:build linux

package fdb

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const sysfsClassNet = "/sys/class/net/"

// kernelFDBEntryLen is sizeof(struct __fdb_entry) from linux/if_bridge.h:
// mac_addr[6] + port_no(1) + is_local(1) + ageing_timer_value(4) +
// port_hi(1) + pad0(1) + unused(2).
const kernelFDBEntryLen = 16

// brctlGetFDBEntries is BRCTL_GET_FDB_ENTRIES from linux/if_bridge.h.
const brctlGetFDBEntries = 5

// ifreq mirrors the leading part of struct ifreq: IFNAMSIZ(16) name octets
// followed by the union member used here, a data pointer.
type ifreq struct {
	name [unix.IFNAMSIZ]byte
	data uintptr
}

// SysfsReader reads the forwarding database through
// /sys/class/net/<bridge>/brforward, falling back to the SIOCDEVPRIVATE
// ioctl with the same record layout when the sysfs file is unavailable.
// This is the Reader used by the switch daemon on Linux.
type SysfsReader struct{}

// Read implements Reader.
func (SysfsReader) Read(bridgeName string, max int) ([]Entry, error) {
	raw, err := readSysfs(bridgeName, max)
	if err == nil {
		return raw, nil
	}

	raw, ioctlErr := readIoctl(bridgeName, max)
	if ioctlErr != nil {
		return nil, fmt.Errorf("sysfs read failed (%v), ioctl fallback failed (%v)", err, ioctlErr)
	}
	return raw, nil
}

func readSysfs(bridgeName string, max int) ([]Entry, error) {
	path := sysfsClassNet + bridgeName + "/brforward"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	n := len(data) / kernelFDBEntryLen
	if n > max {
		n = max
	}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, decodeKernelEntry(data[i*kernelFDBEntryLen:]))
	}
	return entries, nil
}

func readIoctl(bridgeName string, max int) ([]Entry, error) {
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	defer unix.Close(sock)

	buf := make([]byte, max*kernelFDBEntryLen)
	args := [4]uintptr{
		brctlGetFDBEntries,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(max),
		0,
	}

	var name [unix.IFNAMSIZ]byte
	copy(name[:], bridgeName)
	ifr := ifreq{name: name, data: uintptr(unsafe.Pointer(&args[0]))}

	var n int
	for retries := 0; retries < 10; retries++ {
		r1, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(sock), uintptr(unix.SIOCDEVPRIVATE), uintptr(unsafe.Pointer(&ifr)))
		if errno == 0 {
			n = int(r1)
			break
		}
		if errno != unix.EAGAIN {
			return nil, fmt.Errorf("ioctl: %w", errno)
		}
	}

	if n > max {
		n = max
	}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, decodeKernelEntry(buf[i*kernelFDBEntryLen:]))
	}
	return entries, nil
}

func decodeKernelEntry(b []byte) Entry {
	var e Entry
	copy(e.MAC[:], b[0:6])
	portLo := b[6]
	isLocal := b[7]
	ageing := binary.LittleEndian.Uint32(b[8:12])
	portHi := b[12]

	e.PortNo = uint16(portHi)<<8 | uint16(portLo)
	e.IsLocal = isLocal != 0
	e.AgeingTimerAt = jiffiesToAge(ageing)
	return e
}

//go:build !linux

package fdb

import "fmt"

// SysfsReader is unimplemented outside Linux: the bridge forwarding
// database and its sysfs/ioctl surface are Linux-kernel concepts with no
// portable equivalent, so the switch daemon fails its tick with
// ErrUnavailable rather than silently reporting an empty table.
type SysfsReader struct{}

// Read implements Reader.
func (SysfsReader) Read(bridgeName string, max int) ([]Entry, error) {
	return nil, fmt.Errorf("fdb: bridge forwarding database reads are only supported on linux")
}

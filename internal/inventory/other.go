//go:build !linux

package inventory

import "fmt"

// LinuxSource is unimplemented outside Linux: link-type classification and
// bridge-master exclusion are both read from Linux sysfs with no portable
// equivalent defined in the specification, so discovery fails cleanly
// instead of returning a silently empty inventory.
type LinuxSource struct{}

// Discover implements Source.
func (LinuxSource) Discover() ([]Interface, error) {
	return nil, fmt.Errorf("inventory: interface discovery is only supported on linux")
}

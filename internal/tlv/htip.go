package tlv

import "fmt"

// OUI is the TTC organizationally-unique identifier HTIP TLVs are framed
// under.
var OUI = [3]byte{0xE0, 0x27, 0x1A}

// TTC subtypes carried inside an organizationally-specific TLV under OUI.
const (
	TTCDeviceInfo  uint8 = 1
	TTCLinkInfo    uint8 = 2
	TTCMACAddrList uint8 = 3
)

// HTIP device-info information-IDs. Only these four are defined and
// emitted; the decoder labels any other ID generically as id-N.
const (
	DeviceInfoIDCategory         uint8 = 1
	DeviceInfoIDManufacturerCode uint8 = 2
	DeviceInfoIDModelName        uint8 = 3
	DeviceInfoIDModelNumber      uint8 = 4
)

// ManufacturerCodeLen is the fixed length of the manufacturer-code field.
const ManufacturerCodeLen = 6

// maxMACsPerFragment is floor((511 - 4 - 5) / 6): the largest MAC count a
// single subtype-2 TLV's value can hold without exceeding the 511-octet
// per-TLV ceiling.
const maxMACsPerFragment = 83

// deviceInfoCaps documents the nominal per-ID length ceilings named in the
// specification. Exceeding a cap produces a diagnostic warning, never a
// truncation or an error.
var deviceInfoCaps = map[uint8]int{
	DeviceInfoIDCategory:         255,
	DeviceInfoIDManufacturerCode: 6,
	DeviceInfoIDModelName:        31,
	DeviceInfoIDModelNumber:      31,
}

// Warnf is called by the device-info emitter when a value exceeds its
// nominal length cap. Tests and callers that don't care about diagnostics
// may leave it nil.
type Warnf func(format string, args ...any)

// DeviceInfo appends a complete subtype-1 HTIP TLV for one information-ID.
// It never truncates value; when len(value) exceeds the ID's nominal cap
// it calls warn (if non-nil) and still emits the full value.
func DeviceInfo(dst []byte, id uint8, value []byte, warn Warnf) ([]byte, error) {
	if cap, ok := deviceInfoCaps[id]; ok && len(value) > cap && warn != nil {
		warn("htip device-info id=%d length %d exceeds nominal cap %d", id, len(value), cap)
	}
	inner := 4 + 2 + len(value)
	dst, err := EncodeHeader(dst, TypeOrgSpecific, inner)
	if err != nil {
		return dst, err
	}
	dst = append(dst, OUI[:]...)
	dst = append(dst, TTCDeviceInfo)
	dst = append(dst, id, byte(len(value)))
	dst = append(dst, value...)
	return dst, nil
}

// LinkInfoFragments reports how many subtype-2 TLVs are required to carry
// count MAC addresses, and the MAC count each fragment holds (all but the
// last hold maxMACsPerFragment; count==0 still yields one fragment of 0).
func LinkInfoFragments(count int) []int {
	if count == 0 {
		return []int{0}
	}
	n := (count + maxMACsPerFragment - 1) / maxMACsPerFragment
	fragments := make([]int, 0, n)
	remaining := count
	for i := 0; i < n; i++ {
		take := remaining
		if take > maxMACsPerFragment {
			take = maxMACsPerFragment
		}
		fragments = append(fragments, take)
		remaining -= take
	}
	return fragments
}

// LinkInfo appends one or more subtype-2 HTIP TLVs carrying macs, split
// into fragments of at most maxMACsPerFragment MACs each. iftype and
// portNo are truncated to 8 bits per the wire format.
func LinkInfo(dst []byte, iftype uint32, portNo uint16, macs [][6]byte) ([]byte, error) {
	fragments := LinkInfoFragments(len(macs))
	offset := 0
	for _, n := range fragments {
		chunk := macs[offset : offset+n]
		offset += n

		inner := 4 + 5 + 6*n
		var err error
		dst, err = EncodeHeader(dst, TypeOrgSpecific, inner)
		if err != nil {
			return dst, err
		}
		dst = append(dst, OUI[:]...)
		dst = append(dst, TTCLinkInfo)
		dst = append(dst, 1, byte(iftype), 1, byte(portNo), byte(n))
		for _, mac := range chunk {
			dst = append(dst, mac[:]...)
		}
	}
	return dst, nil
}

// LinkInfoLen returns the number of octets LinkInfo would append for the
// given MAC count, without building the bytes. It shares LinkInfoFragments
// with LinkInfo, so the two always agree on the fragment split.
func LinkInfoLen(count int) int {
	total := 0
	for _, n := range LinkInfoFragments(count) {
		total += HeaderLen + 4 + 5 + 6*n
	}
	return total
}

// IsHTIP reports whether a decoded org-specific TLV value carries the HTIP
// OUI and a recognized TTC subtype.
func IsHTIP(value []byte) bool {
	if len(value) < 4 {
		return false
	}
	if value[0] != OUI[0] || value[1] != OUI[1] || value[2] != OUI[2] {
		return false
	}
	switch value[3] {
	case TTCDeviceInfo, TTCLinkInfo, TTCMACAddrList:
		return true
	default:
		return false
	}
}

// DeviceInfoName returns a human label for a device-info information-ID,
// for diagnostics only.
func DeviceInfoName(id uint8) string {
	switch id {
	case DeviceInfoIDCategory:
		return "device-category"
	case DeviceInfoIDManufacturerCode:
		return "manufacturer-code"
	case DeviceInfoIDModelName:
		return "model-name"
	case DeviceInfoIDModelNumber:
		return "model-number"
	default:
		return fmt.Sprintf("id-%d", id)
	}
}

// Package frame assembles per-interface LLDP+HTIP payloads from the TLV
// codec, the interface inventory, and the forwarding database, and hands
// the result to the transmitter.
package frame

import (
	"errors"
	"fmt"

	"github.com/jaist-htip/htip/internal/config"
	"github.com/jaist-htip/htip/internal/fdb"
	"github.com/jaist-htip/htip/internal/inventory"
	"github.com/jaist-htip/htip/internal/tlv"
)

// ScratchLen is the zeroed scratch buffer size the reference
// implementation allocates per frame.
const ScratchLen = 1500

// ErrFrameTooLarge is returned when an assembled payload would not fit in
// ScratchLen octets.
var ErrFrameTooLarge = errors.New("frame: too large")

// Sender is what C5 hands completed payloads to; internal/transmit.Handle
// satisfies it.
type Sender interface {
	Send(srcMAC [6]byte, payload []byte) error
}

// Warnf receives diagnostic messages frame assembly wants surfaced but
// that are not fatal (a skipped non-bridged interface, an oversize
// device-info value).
type Warnf func(format string, args ...any)

// deviceInfoTLVs appends the four HTIP device-info TLVs in the fixed
// order the specification requires: category, model-name,
// manufacturer-code, model-number.
func deviceInfoTLVs(dst []byte, id config.Identity, warn tlv.Warnf) ([]byte, error) {
	var err error
	dst, err = tlv.DeviceInfo(dst, tlv.DeviceInfoIDCategory, []byte(id.DeviceCategory), warn)
	if err != nil {
		return dst, err
	}
	dst, err = tlv.DeviceInfo(dst, tlv.DeviceInfoIDModelName, []byte(id.ModelName), warn)
	if err != nil {
		return dst, err
	}
	dst, err = tlv.DeviceInfo(dst, tlv.DeviceInfoIDManufacturerCode, []byte(id.ManufacturerCode), warn)
	if err != nil {
		return dst, err
	}
	return tlv.DeviceInfo(dst, tlv.DeviceInfoIDModelNumber, []byte(id.ModelNumber), warn)
}

// BuildDeviceInfo assembles and sends one device-info frame per interface
// with an open handle (agent mode).
func BuildDeviceInfo(ifaces []inventory.Interface, id config.Identity, warn Warnf) error {
	for _, iface := range ifaces {
		if iface.Handle == nil {
			continue
		}
		payload, err := buildDeviceInfoPayload(iface, id, warn)
		if err != nil {
			return fmt.Errorf("interface %s: %w", iface.Name, err)
		}
		sender, ok := iface.Handle.(Sender)
		if !ok {
			return fmt.Errorf("interface %s: handle does not implement Sender", iface.Name)
		}
		if err := sender.Send(iface.MAC, payload); err != nil {
			return fmt.Errorf("interface %s: %w", iface.Name, err)
		}
	}
	return nil
}

func buildDeviceInfoPayload(iface inventory.Interface, id config.Identity, warn Warnf) ([]byte, error) {
	payload := make([]byte, 0, ScratchLen)

	payload, err := tlv.Prelude(payload, iface.MAC, iface.Name, 0)
	if err != nil {
		return nil, err
	}

	payload, err = deviceInfoTLVs(payload, id, tlvWarnf(warn))
	if err != nil {
		return nil, err
	}

	payload = tlv.EndOfLLDPDU(payload)
	if len(payload) > ScratchLen {
		return nil, fmt.Errorf("%w: %d octets exceeds %d", ErrFrameTooLarge, len(payload), ScratchLen)
	}
	return payload, nil
}

// BuildDeviceLinkInfo implements switch-mode emission: Pass A aggregates
// the link-info block once across every bridged interface, Pass B emits
// one frame per interface carrying that block verbatim, plus device-info.
func BuildDeviceLinkInfo(ifaces []inventory.Interface, table *fdb.Table, id config.Identity, warn Warnf) error {
	linkInfo, bridged, err := buildLinkInfoBlock(ifaces, table, warn)
	if err != nil {
		return err
	}

	for _, iface := range ifaces {
		if iface.Handle == nil {
			continue
		}
		if !bridged[iface.Name] {
			continue
		}

		payload := make([]byte, 0, ScratchLen)
		payload, err = tlv.Prelude(payload, iface.MAC, iface.Name, 0)
		if err != nil {
			return fmt.Errorf("interface %s: %w", iface.Name, err)
		}
		payload, err = deviceInfoTLVs(payload, id, tlvWarnf(warn))
		if err != nil {
			return fmt.Errorf("interface %s: %w", iface.Name, err)
		}

		if len(payload)+len(linkInfo) > ScratchLen-2 {
			return fmt.Errorf("interface %s: %w: link-info block of %d octets does not fit remaining %d", iface.Name, ErrFrameTooLarge, len(linkInfo), ScratchLen-2-len(payload))
		}
		payload = append(payload, linkInfo...)
		payload = tlv.EndOfLLDPDU(payload)

		sender, ok := iface.Handle.(Sender)
		if !ok {
			return fmt.Errorf("interface %s: handle does not implement Sender", iface.Name)
		}
		if err := sender.Send(iface.MAC, payload); err != nil {
			return fmt.Errorf("interface %s: %w", iface.Name, err)
		}
	}
	return nil
}

// buildLinkInfoBlock is Pass A: aggregate link-info TLVs for every
// interface that has a bridge port, skipping unbridged interfaces. It
// also reports which interfaces had any remote MACs, since Pass B only
// emits a frame for those.
func buildLinkInfoBlock(ifaces []inventory.Interface, table *fdb.Table, warn Warnf) ([]byte, map[string]bool, error) {
	var block []byte
	bridged := make(map[string]bool)

	for _, iface := range ifaces {
		portNo := table.PortnoOf(iface.MAC)
		if portNo == fdb.PortInvalid {
			if warn != nil {
				warn("interface %s is not part of the bridge, skipping link-info", iface.Name)
			}
			continue
		}

		macs := table.RemoteMACsVia(iface.MAC)
		if len(macs) > 0 {
			bridged[iface.Name] = true
		}

		var err error
		block, err = tlv.LinkInfo(block, iface.LinkType, portNo, macs)
		if err != nil {
			return nil, nil, fmt.Errorf("interface %s: %w", iface.Name, err)
		}
	}

	return block, bridged, nil
}

func tlvWarnf(w Warnf) tlv.Warnf {
	if w == nil {
		return nil
	}
	return tlv.Warnf(w)
}

// Package transmit opens a raw L2 handle per interface and writes
// pre-built LLDP+HTIP frames to the Ethernet broadcast address.
package transmit

import (
	"errors"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/jaist-htip/htip/internal/inventory"
)

// BroadcastMAC is the destination address every HTIP frame carries. JJ-300
// deviates from 802.1AB's nearest-bridge group address and always targets
// the Ethernet broadcast address instead.
var BroadcastMAC = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// EtherTypeLLDP is the Ethertype every HTIP frame is carried under.
const EtherTypeLLDP = 0x88CC

// FrameTooLargeMax is the largest total frame size (header + payload) this
// package will attempt to transmit.
const FrameTooLargeMax = 1500 + 14

var (
	// ErrOpenFailed wraps any failure to acquire a live capture handle.
	ErrOpenFailed = errors.New("transmit: open failed")
	// ErrTransmitError wraps any failure to write a frame to the wire.
	ErrTransmitError = errors.New("transmit: send failed")
	// ErrFrameTooLarge is returned when the assembled frame exceeds
	// FrameTooLargeMax.
	ErrFrameTooLarge = errors.New("transmit: frame too large")
)

// Handle wraps one interface's live pcap handle for broadcast writes.
// It satisfies inventory.Handle.
type Handle struct {
	iface string
	pcap  *pcap.Handle
}

// Open acquires a promiscuous-mode live handle on ifaceName.
func Open(ifaceName string) (*Handle, error) {
	h, err := pcap.OpenLive(ifaceName, 65535, true, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, ifaceName, err)
	}
	return &Handle{iface: ifaceName, pcap: h}, nil
}

// BuildFrame prepends the Ethernet header (broadcast destination, srcMAC,
// EtherTypeLLDP) to payload. Separated from Send so the byte layout can be
// tested without a live pcap handle.
func BuildFrame(srcMAC [6]byte, payload []byte) ([]byte, error) {
	total := 14 + len(payload)
	if total > FrameTooLargeMax {
		return nil, fmt.Errorf("%w: %d octets exceeds %d", ErrFrameTooLarge, total, FrameTooLargeMax)
	}

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr(srcMAC[:]),
		DstMAC:       BroadcastMAC,
		EthernetType: layers.EthernetType(EtherTypeLLDP),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: false, ComputeChecksums: false}
	if err := gopacket.SerializeLayers(buf, opts, eth, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("%w: serialize: %v", ErrTransmitError, err)
	}
	// layers.Ethernet pads frames shorter than 60 octets; trim back to
	// exactly header plus payload.
	return buf.Bytes()[:total], nil
}

// Send wraps payload in an Ethernet header addressed to BroadcastMAC from
// srcMAC under EtherTypeLLDP, then writes it to the wire.
func (h *Handle) Send(srcMAC [6]byte, payload []byte) error {
	frame, err := BuildFrame(srcMAC, payload)
	if err != nil {
		return err
	}
	if err := h.pcap.WritePacketData(frame); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransmitError, h.iface, err)
	}
	return nil
}

// Close releases the underlying pcap handle. Satisfies inventory.Handle.
func (h *Handle) Close() error {
	h.pcap.Close()
	return nil
}

// Opener adapts Open to inventory.Opener.
type Opener struct{}

// Open implements inventory.Opener.
func (Opener) Open(ifaceName string) (inventory.Handle, error) {
	return Open(ifaceName)
}

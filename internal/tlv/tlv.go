// Package tlv implements the LLDP and HTIP Type-Length-Value wire codec.
//
// It is the sole source of truth for byte layout: every frame producer in
// this module calls into one of the emitters here, and the one diagnostic
// decoder walks frames using the same header rules.
package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Type is an LLDP TLV type, occupying the top 7 bits of the 2-octet header.
type Type uint8

// LLDP mandatory and optional TLV types used by this implementation.
const (
	TypeEnd             Type = 0
	TypeChassisID       Type = 1
	TypePortID          Type = 2
	TypeTTL             Type = 3
	TypePortDescription Type = 4
	TypeOrgSpecific     Type = 127
)

// Chassis/port ID subtypes. Only the MAC-address subtype is emitted.
const (
	ChassisIDSubtypeMAC uint8 = 4
	PortIDSubtypeMAC    uint8 = 3
)

// LengthMax is the largest value a 9-bit TLV length field can hold.
const LengthMax = 0x1FF

// HeaderLen is the size in octets of a TLV header (type+length packed).
const HeaderLen = 2

// DefaultTTL is the TTL value used when the caller has no preference.
const DefaultTTL = 60

// Sentinel errors for the taxonomy named in the specification this codec
// implements. Callers use errors.Is against these.
var (
	// ErrEncodingOverflow is returned when a TLV length or the TTL value
	// falls outside its encodable range.
	ErrEncodingOverflow = errors.New("tlv: encoding overflow")
	// ErrMalformedTLV is returned by the decoder when a TLV header
	// declares a length the remaining buffer cannot satisfy.
	ErrMalformedTLV = errors.New("tlv: malformed tlv")
)

// EncodeHeader appends the 2-octet TLV header for typ/length to dst and
// returns the extended slice. Octet 0 holds the 7-bit type in bits 7..1 and
// bit 8 of length in bit 0; octet 1 holds bits 7..0 of length.
func EncodeHeader(dst []byte, typ Type, length int) ([]byte, error) {
	if length < 0 || length > LengthMax {
		return dst, fmt.Errorf("%w: length %d out of range 0..%d", ErrEncodingOverflow, length, LengthMax)
	}
	b0 := byte(typ)<<1 | byte((length>>8)&0x01)
	b1 := byte(length & 0xFF)
	return append(dst, b0, b1), nil
}

// DecodeHeader reads a 2-octet TLV header from the front of buf.
func DecodeHeader(buf []byte) (typ Type, length int, err error) {
	if len(buf) < HeaderLen {
		return 0, 0, fmt.Errorf("%w: buffer shorter than header", ErrMalformedTLV)
	}
	typ = Type(buf[0] >> 1)
	length = int(buf[0]&0x01)<<8 | int(buf[1])
	return typ, length, nil
}

// ChassisID appends a Chassis-ID TLV (MAC-address subtype) for mac.
func ChassisID(dst []byte, mac [6]byte) ([]byte, error) {
	return macTLV(dst, TypeChassisID, ChassisIDSubtypeMAC, mac)
}

// PortID appends a Port-ID TLV (MAC-address subtype) for mac.
func PortID(dst []byte, mac [6]byte) ([]byte, error) {
	return macTLV(dst, TypePortID, PortIDSubtypeMAC, mac)
}

func macTLV(dst []byte, typ Type, subtype uint8, mac [6]byte) ([]byte, error) {
	dst, err := EncodeHeader(dst, typ, 1+6)
	if err != nil {
		return dst, err
	}
	dst = append(dst, subtype)
	dst = append(dst, mac[:]...)
	return dst, nil
}

// TTL appends a Time-To-Live TLV. ttl must be strictly less than 65535;
// 65535 or above fails with ErrEncodingOverflow.
func TTL(dst []byte, ttl uint16) ([]byte, error) {
	if ttl >= 65535 {
		return dst, fmt.Errorf("%w: ttl %d must be < 65535", ErrEncodingOverflow, ttl)
	}
	dst, err := EncodeHeader(dst, TypeTTL, 2)
	if err != nil {
		return dst, err
	}
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], ttl)
	return append(dst, buf[:]...), nil
}

// PortDescription appends a Port-Description TLV carrying the raw octets
// of name, unterminated.
func PortDescription(dst []byte, name string) ([]byte, error) {
	dst, err := EncodeHeader(dst, TypePortDescription, len(name))
	if err != nil {
		return dst, err
	}
	return append(dst, name...), nil
}

// EndOfLLDPDU appends the canonical zero-type, zero-length terminator TLV.
func EndOfLLDPDU(dst []byte) []byte {
	return append(dst, 0, 0)
}

// Prelude appends, in LLDP's mandatory order, Chassis-ID, Port-ID, TTL
// (ttl, or DefaultTTL when ttl==0) and Port-Description for the given
// interface MAC and name.
func Prelude(dst []byte, mac [6]byte, name string, ttl uint16) ([]byte, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	dst, err := ChassisID(dst, mac)
	if err != nil {
		return dst, err
	}
	dst, err = PortID(dst, mac)
	if err != nil {
		return dst, err
	}
	dst, err = TTL(dst, ttl)
	if err != nil {
		return dst, err
	}
	return PortDescription(dst, name)
}

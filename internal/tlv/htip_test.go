package tlv

import (
	"bytes"
	"testing"
)

// TestLinkInfoZeroMACs exercises the "Zero MACs" boundary scenario. The
// declared length here is the formula value 4+5+6*0=9 (encoded as 0x09);
// the specification's own prose table types this byte as 0x0A, one more
// than the enumerated value octets actually total and inconsistent with
// the 4+5+6n formula it states elsewhere, so 0x09 is what this codec
// produces and expects.
func TestLinkInfoZeroMACs(t *testing.T) {
	got, err := LinkInfo(nil, 6, 3, nil)
	if err != nil {
		t.Fatalf("LinkInfo() error = %v", err)
	}
	want := []byte{0xFE, 0x09, 0xE0, 0x27, 0x1A, 0x02, 0x01, 0x06, 0x01, 0x03, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("LinkInfo(zero macs) = % X, want % X", got, want)
	}
}

// TestLinkInfoOneMAC exercises the "One MAC" boundary scenario, with the
// same formula-vs-prose length discrepancy as TestLinkInfoZeroMACs: 15
// (0x0F), not the prose's 0x10.
func TestLinkInfoOneMAC(t *testing.T) {
	got, err := LinkInfo(nil, 6, 3, [][6]byte{{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}})
	if err != nil {
		t.Fatalf("LinkInfo() error = %v", err)
	}
	want := []byte{
		0xFE, 0x0F, 0xE0, 0x27, 0x1A, 0x02, 0x01, 0x06, 0x01, 0x03, 0x01,
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("LinkInfo(one mac) = % X, want % X", got, want)
	}
}

func TestLinkInfoFragmentationAt84MACs(t *testing.T) {
	fragments := LinkInfoFragments(84)
	if len(fragments) != 2 || fragments[0] != 83 || fragments[1] != 1 {
		t.Fatalf("LinkInfoFragments(84) = %v, want [83 1]", fragments)
	}

	macs := make([][6]byte, 84)
	for i := range macs {
		macs[i] = [6]byte{0, 0, 0, 0, 0, byte(i)}
	}
	got, err := LinkInfo(nil, 6, 3, macs)
	if err != nil {
		t.Fatalf("LinkInfo() error = %v", err)
	}

	firstInner := 4 + 5 + 6*83
	if firstInner != 507 {
		t.Fatalf("first fragment inner length = %d, want 507", firstInner)
	}
	typ, length, err := DecodeHeader(got)
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	if typ != TypeOrgSpecific || length != 507 {
		t.Errorf("first fragment header = (%d, %d), want (%d, 507)", typ, length, TypeOrgSpecific)
	}
	// length=507 > 255 so the length's bit 8 is set in byte0's low bit.
	if got[0] != 0xFF {
		t.Errorf("first fragment byte0 = %#x, want 0xFF (type=0x7F<<1 | length-bit8)", got[0])
	}

	secondStart := HeaderLen + firstInner
	typ2, length2, err := DecodeHeader(got[secondStart:])
	if err != nil {
		t.Fatalf("DecodeHeader() second fragment error = %v", err)
	}
	if typ2 != TypeOrgSpecific || length2 != 4+5+6*1 {
		t.Errorf("second fragment header = (%d, %d), want (%d, 15)", typ2, length2, TypeOrgSpecific)
	}

	wantLen := LinkInfoLen(84)
	if len(got) != wantLen {
		t.Errorf("LinkInfo(84 macs) total length = %d, want %d", len(got), wantLen)
	}
}

func TestDeviceInfoRoundTrip(t *testing.T) {
	got, err := DeviceInfo(nil, DeviceInfoIDCategory, []byte("AV_TV"), nil)
	if err != nil {
		t.Fatalf("DeviceInfo() error = %v", err)
	}
	want := []byte{0xFE, 0x0B, 0xE0, 0x27, 0x1A, 0x01, 0x01, 0x05, 0x41, 0x56, 0x5F, 0x54, 0x56}
	if !bytes.Equal(got, want) {
		t.Errorf("DeviceInfo() = % X, want % X", got, want)
	}

	records, err := Decode(append(got, 0, 0))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(records) != 2 || records[0].Type != TypeOrgSpecific {
		t.Fatalf("Decode() = %+v, want one org-specific record then End", records)
	}
	value := records[0].Value
	if !IsHTIP(value) {
		t.Fatalf("IsHTIP() = false, want true for %X", value)
	}
	id, length := value[4], int(value[5])
	if id != DeviceInfoIDCategory || length != 5 || string(value[6:6+length]) != "AV_TV" {
		t.Errorf("decoded device-info id=%d len=%d value=%q, want id=1 len=5 value=AV_TV", id, length, value[6:6+length])
	}
}

func TestDeviceInfoWarnsOnOversizeValue(t *testing.T) {
	var warned bool
	longCode := bytes.Repeat([]byte{'A'}, ManufacturerCodeLen+1)
	_, err := DeviceInfo(nil, DeviceInfoIDManufacturerCode, longCode, func(string, ...any) { warned = true })
	if err != nil {
		t.Fatalf("DeviceInfo() error = %v", err)
	}
	if !warned {
		t.Errorf("DeviceInfo() with oversize manufacturer code did not call warn")
	}
}

func TestIsHTIPRejectsForeignOUI(t *testing.T) {
	if IsHTIP([]byte{0x00, 0x80, 0xC2, 0x01}) {
		t.Errorf("IsHTIP() = true for non-HTIP OUI")
	}
	if IsHTIP([]byte{0xE0, 0x27}) {
		t.Errorf("IsHTIP() = true for truncated value")
	}
}

// TestEndToEndFrame checks the opening and closing bytes of a full LLDPDU
// built from the prelude plus an End-of-LLDPDU terminator, matching the
// "End-to-end frame" boundary scenario (the Ethernet header itself is the
// concern of the frame/transmit packages, not this package; this test
// checks only the LLDP payload's own boundary).
func TestEndToEndFrame(t *testing.T) {
	mac := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	payload, err := Prelude(nil, mac, "eth0", 0)
	if err != nil {
		t.Fatalf("Prelude() error = %v", err)
	}
	payload = EndOfLLDPDU(payload)

	wantHead := []byte{byte(TypeChassisID) << 1, 0x07, ChassisIDSubtypeMAC}
	if !bytes.Equal(payload[:len(wantHead)], wantHead) {
		t.Errorf("payload head = % X, want prefix % X", payload[:len(wantHead)], wantHead)
	}
	if tail := payload[len(payload)-2:]; !bytes.Equal(tail, []byte{0x00, 0x00}) {
		t.Errorf("payload tail = % X, want End-of-LLDPDU 00 00", tail)
	}
}

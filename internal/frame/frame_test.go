package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jaist-htip/htip/internal/config"
	"github.com/jaist-htip/htip/internal/fdb"
	"github.com/jaist-htip/htip/internal/inventory"
	"github.com/jaist-htip/htip/internal/tlv"
)

type fakeHandle struct {
	sent   [][]byte
	closed bool
	fail   bool
}

func (h *fakeHandle) Close() error { h.closed = true; return nil }
func (h *fakeHandle) Send(srcMAC [6]byte, payload []byte) error {
	if h.fail {
		return errors.New("send failed")
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	h.sent = append(h.sent, cp)
	return nil
}

func testIdentity() config.Identity {
	return config.Identity{
		DeviceCategory:   "AV_TV",
		ManufacturerCode: "JAIST ",
		ModelName:        "JAIST_VTV_01",
		ModelNumber:      "VTV01",
	}
}

func TestBuildDeviceInfoSkipsUnopenedInterfaces(t *testing.T) {
	opened := &fakeHandle{}
	ifaces := []inventory.Interface{
		{Name: "eth0", MAC: [6]byte{0, 0, 0, 0, 0, 1}, Handle: opened},
		{Name: "eth1", MAC: [6]byte{0, 0, 0, 0, 0, 2}, Handle: nil},
	}

	if err := BuildDeviceInfo(ifaces, testIdentity(), nil); err != nil {
		t.Fatalf("BuildDeviceInfo() error = %v", err)
	}
	if len(opened.sent) != 1 {
		t.Fatalf("opened.sent = %d frames, want 1 (eth1 has no handle)", len(opened.sent))
	}

	records, err := tlv.Decode(opened.sent[0])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var orgCount int
	for _, r := range records {
		if r.Type == tlv.TypeOrgSpecific {
			orgCount++
		}
	}
	if orgCount != 4 {
		t.Errorf("org-specific TLV count = %d, want 4 device-info TLVs", orgCount)
	}
	if records[len(records)-1].Type != tlv.TypeEnd {
		t.Errorf("last record type = %d, want End-of-LLDPDU", records[len(records)-1].Type)
	}
}

func TestBuildDeviceInfoFieldOrder(t *testing.T) {
	h := &fakeHandle{}
	ifaces := []inventory.Interface{{Name: "eth0", MAC: [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, Handle: h}}

	if err := BuildDeviceInfo(ifaces, testIdentity(), nil); err != nil {
		t.Fatalf("BuildDeviceInfo() error = %v", err)
	}
	records, err := tlv.Decode(h.sent[0])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var ids []uint8
	for _, r := range records {
		if r.Type != tlv.TypeOrgSpecific || !tlv.IsHTIP(r.Value) {
			continue
		}
		ids = append(ids, r.Value[4])
	}
	wantOrder := []uint8{tlv.DeviceInfoIDCategory, tlv.DeviceInfoIDModelName, tlv.DeviceInfoIDManufacturerCode, tlv.DeviceInfoIDModelNumber}
	if len(ids) != len(wantOrder) {
		t.Fatalf("device-info id order = %v, want %v", ids, wantOrder)
	}
	for i := range wantOrder {
		if ids[i] != wantOrder[i] {
			t.Errorf("device-info id[%d] = %d, want %d", i, ids[i], wantOrder[i])
		}
	}
}

func TestBuildDeviceLinkInfoSkipsUnbridgedInterface(t *testing.T) {
	bridged := &fakeHandle{}
	unbridged := &fakeHandle{}
	ifaces := []inventory.Interface{
		{Name: "eth0", MAC: [6]byte{0, 0, 0, 0, 0, 1}, LinkType: inventory.LinkTypeEthernetCSMACD, Handle: bridged},
		{Name: "eth1", MAC: [6]byte{0, 0, 0, 0, 0, 2}, LinkType: inventory.LinkTypeEthernetCSMACD, Handle: unbridged},
	}

	table := fdb.NewTable(10)
	source := testFDBSource{entries: []fdb.Entry{
		{MAC: [6]byte{0, 0, 0, 0, 0, 1}, PortNo: 1, IsLocal: true},
		{MAC: [6]byte{0, 0, 0, 0, 0, 9}, PortNo: 1, IsLocal: false},
	}}
	if err := table.Load(source, "br0"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := BuildDeviceLinkInfo(ifaces, table, testIdentity(), nil); err != nil {
		t.Fatalf("BuildDeviceLinkInfo() error = %v", err)
	}

	if len(bridged.sent) != 1 {
		t.Fatalf("bridged.sent = %d, want 1", len(bridged.sent))
	}
	if len(unbridged.sent) != 0 {
		t.Fatalf("unbridged.sent = %d, want 0 (no local FDB entry)", len(unbridged.sent))
	}

	records, err := tlv.Decode(bridged.sent[0])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var sawLinkInfo bool
	for _, r := range records {
		if r.Type == tlv.TypeOrgSpecific && tlv.IsHTIP(r.Value) && r.Value[3] == tlv.TTCLinkInfo {
			sawLinkInfo = true
		}
	}
	if !sawLinkInfo {
		t.Errorf("bridged frame missing link-info TLV")
	}
}

type testFDBSource struct {
	entries []fdb.Entry
}

func (s testFDBSource) Read(bridgeName string, max int) ([]fdb.Entry, error) {
	return s.entries, nil
}

func TestBuildDeviceLinkInfoFrameTooLarge(t *testing.T) {
	h := &fakeHandle{}
	iface := inventory.Interface{Name: "eth0", MAC: [6]byte{0, 0, 0, 0, 0, 1}, LinkType: inventory.LinkTypeEthernetCSMACD, Handle: h}

	table := fdb.NewTable(fdb.MaxEntries)
	var entries []fdb.Entry
	entries = append(entries, fdb.Entry{MAC: iface.MAC, PortNo: 1, IsLocal: true})
	for i := 0; i < 250; i++ {
		entries = append(entries, fdb.Entry{MAC: [6]byte{0, 0, 1, 0, 0, byte(i)}, PortNo: 1, IsLocal: false})
	}
	if err := table.Load(testFDBSource{entries: entries}, "br0"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err := BuildDeviceLinkInfo([]inventory.Interface{iface}, table, testIdentity(), nil)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("BuildDeviceLinkInfo() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestBuildDeviceInfoPropagatesSendError(t *testing.T) {
	h := &fakeHandle{fail: true}
	ifaces := []inventory.Interface{{Name: "eth0", MAC: [6]byte{0, 0, 0, 0, 0, 1}, Handle: h}}
	err := BuildDeviceInfo(ifaces, testIdentity(), nil)
	if err == nil {
		t.Fatalf("BuildDeviceInfo() error = nil, want send failure propagated")
	}
}

func TestManufacturerCodeEmittedVerbatim(t *testing.T) {
	h := &fakeHandle{}
	ifaces := []inventory.Interface{{Name: "eth0", MAC: [6]byte{0, 0, 0, 0, 0, 1}, Handle: h}}
	if err := BuildDeviceInfo(ifaces, testIdentity(), nil); err != nil {
		t.Fatalf("BuildDeviceInfo() error = %v", err)
	}
	records, _ := tlv.Decode(h.sent[0])
	for _, r := range records {
		if r.Type == tlv.TypeOrgSpecific && tlv.IsHTIP(r.Value) && r.Value[4] == tlv.DeviceInfoIDManufacturerCode {
			length := int(r.Value[5])
			if length != tlv.ManufacturerCodeLen {
				t.Errorf("manufacturer-code length = %d, want %d", length, tlv.ManufacturerCodeLen)
			}
			if !bytes.Equal(r.Value[6:6+length], []byte("JAIST ")) {
				t.Errorf("manufacturer-code value = %q, want %q", r.Value[6:6+length], "JAIST ")
			}
		}
	}
}

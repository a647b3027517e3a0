// Command htipctl is a development aid for inspecting HTIP/LLDP frames;
// it does not participate in frame emission.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/jaist-htip/htip/internal/tlv"
)

func main() {
	if len(os.Args) < 3 || os.Args[1] != "dump" {
		fmt.Fprintln(os.Stderr, "usage: htipctl dump <file>")
		fmt.Fprintln(os.Stderr, "  <file> holds either raw frame bytes or hex text (whitespace-separated)")
		os.Exit(1)
	}

	payload, err := readFrame(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "htipctl: %v\n", err)
		os.Exit(1)
	}

	payload = stripEthernetHeader(payload)

	records, err := tlv.Decode(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "htipctl: decode: %v\n", err)
	}
	fmt.Print(tlv.Dump(records))
}

// stripEthernetHeader drops the 14-octet Ethernet header when the input
// looks like a captured frame rather than a bare LLDPDU: the first TLV
// must be Chassis ID (type 1), so if byte 0 doesn't decode to that we
// assume a 14-byte header precedes the payload.
func stripEthernetHeader(b []byte) []byte {
	if len(b) > 14 {
		typ, _, err := tlv.DecodeHeader(b)
		if err != nil || typ != tlv.TypeChassisID {
			return b[14:]
		}
	}
	return b
}

func readFrame(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if decoded, ok := tryDecodeHex(raw); ok {
		return decoded, nil
	}
	return raw, nil
}

func tryDecodeHex(raw []byte) ([]byte, bool) {
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return nil, false
	}
	joined := strings.Join(fields, "")
	decoded, err := hex.DecodeString(joined)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

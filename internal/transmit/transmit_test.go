package transmit

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildFrameHeaderAndDestination(t *testing.T) {
	mac := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	payload := []byte{0x01, 0x02, 0x03}

	frame, err := BuildFrame(mac, payload)
	if err != nil {
		t.Fatalf("BuildFrame() error = %v", err)
	}

	wantHead := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // broadcast destination
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, // source
		0x88, 0xCC, // Ethertype
	}
	if !bytes.Equal(frame[:14], wantHead) {
		t.Errorf("frame head = % X, want % X", frame[:14], wantHead)
	}
	if !bytes.Equal(frame[14:], payload) {
		t.Errorf("frame payload = % X, want % X", frame[14:], payload)
	}
}

func TestBuildFrameTooLarge(t *testing.T) {
	mac := [6]byte{0, 0, 0, 0, 0, 1}
	payload := make([]byte, FrameTooLargeMax) // + 14-byte header overflows
	_, err := BuildFrame(mac, payload)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("BuildFrame() error = %v, want ErrFrameTooLarge", err)
	}
}

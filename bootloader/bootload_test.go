package bootloader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"picloader/hexfile"
)

func writeFirmware(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firmware.hex")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBootload(t *testing.T) {
	// goto 0x020, nop, all-ones word. No PCLATH initialisation, so the
	// relocated vector gets the CLRF PCLATH prefix.
	path := writeFirmware(t, ":0600000020280000FF3F00\n:00000001FF\n")

	var progress []int
	port := &fakePort{replies: [][]byte{{0x57, 'K'}, {'K'}, {'K'}}}
	sess := newTestSession(port, WithProgress(func(p int) {
		progress = append(progress, p)
	}))

	if err := sess.Bootload(context.Background(), path); err != nil {
		t.Fatalf("Bootload failed: %v", err)
	}

	// Probe plus two block frames: the jump stub block at address 0 and the
	// relocated vector block below the top of flash.
	if len(port.writes) != 3 {
		t.Fatalf("Expected 3 writes, got %d", len(port.writes))
	}

	first := port.writes[1]
	if first[0] != 0 || first[1] != 0 {
		t.Errorf("Expected first block at address 0, got %v", first[:2])
	}
	stub := []byte{0x1F, 0x30, 0x8A, 0x00, 0xA0, 0x2F}
	if !bytes.Equal(first[3:9], stub) {
		t.Errorf("Expected jump stub at start of flash, got %v", first[3:9])
	}

	// The relocated vector lands 200 bytes below the top of flash
	// (byte 0x3F38, word 0x1F9C), inside the block starting at word 0x1F80.
	second := port.writes[2]
	if second[0] != 0x1F || second[1] != 0x80 {
		t.Errorf("Expected relocated vector block at word 0x1F80, got %v", second[:2])
	}
	offset := 3 + (0x3F38 - 2*0x1F80)
	want := []byte{0x8A, 0x01, 0x20, 0x28} // clrf PCLATH, then the original goto
	if !bytes.Equal(second[offset:offset+4], want) {
		t.Errorf("Expected relocated vector %v, got %v", want, second[offset:offset+4])
	}

	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Errorf("Expected progress to end at 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("Progress not monotonic: %v", progress)
		}
	}
}

func TestBootloadMissingFirmware(t *testing.T) {
	port := &fakePort{replies: [][]byte{{0x57, 'K'}}}
	sess := newTestSession(port)

	err := sess.Bootload(context.Background(), filepath.Join(t.TempDir(), "missing.hex"))
	var readErr *hexfile.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("Expected *hexfile.ReadError, got %v", err)
	}
}

func TestBootloadDetectFailure(t *testing.T) {
	sess := newTestSession(&fakePort{})

	err := sess.Bootload(context.Background(), "unused.hex")
	var detectErr *DetectError
	if !errors.As(err, &detectErr) {
		t.Fatalf("Expected *DetectError, got %v", err)
	}
}

func TestBootloadSkipsConnectWhenDetected(t *testing.T) {
	path := writeFirmware(t, ":0200000020280E\n")

	port := &fakePort{replies: [][]byte{{'K'}, {'K'}}}
	sess := newDetectedSession(port, 0x57)

	if err := sess.Bootload(context.Background(), path); err != nil {
		t.Fatalf("Bootload failed: %v", err)
	}

	// No probe write: the first frame is already a block.
	if len(port.writes) == 0 || len(port.writes[0]) < 3 {
		t.Fatal("Expected block frames only")
	}
	if port.writes[0][0] == 0xC1 && len(port.writes[0]) == 1 {
		t.Error("Expected no probe write for an already detected session")
	}
}

package hexfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSingleDataRecord(t *testing.T) {
	img, err := ParseReader(strings.NewReader(":0400000002030405E7\n"))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	want := map[int]byte{0: 0x02, 1: 0x03, 2: 0x04, 3: 0x05}
	if img.Len() != len(want) {
		t.Fatalf("Expected %d bytes, got %d", len(want), img.Len())
	}
	for addr, value := range want {
		got, ok := img.At(addr)
		if !ok {
			t.Errorf("Missing byte at address %d", addr)
			continue
		}
		if got != value {
			t.Errorf("Address %d: expected %#02x, got %#02x", addr, value, got)
		}
	}
}

func TestParseOffsetRecord(t *testing.T) {
	img, err := ParseReader(strings.NewReader(":02010000AABB98\n"))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if got, _ := img.At(0x100); got != 0xAA {
		t.Errorf("Expected 0xAA at 0x100, got %#02x", got)
	}
	if got, _ := img.At(0x101); got != 0xBB {
		t.Errorf("Expected 0xBB at 0x101, got %#02x", got)
	}
}

func TestParseSemicolonRecord(t *testing.T) {
	img, err := ParseReader(strings.NewReader(";020000001234B8\n"))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if img.Len() != 2 {
		t.Errorf("Expected 2 bytes, got %d", img.Len())
	}
}

func TestParseStopsAtConfigMarker(t *testing.T) {
	input := ":020000001234B8\n" +
		":020000040030CA\n" +
		":02000000AABB99\n"

	img, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if img.Len() != 2 {
		t.Errorf("Expected scan to stop at config marker, image has %d bytes", img.Len())
	}
	if got, _ := img.At(0); got != 0x12 {
		t.Errorf("Expected 0x12 at 0, got %#02x", got)
	}
}

func TestParseStopsAtEEPROMMarker(t *testing.T) {
	input := ":020000001234B8\n" +
		":0200000400F00A\n" +
		":02000000AABB99\n"

	img, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if img.Len() != 2 {
		t.Errorf("Expected scan to stop at EEPROM marker, image has %d bytes", img.Len())
	}
}

func TestParseStopsAtNonDataRecord(t *testing.T) {
	input := ":020000001234B8\n" +
		":00000001FF\n" +
		":02000000AABB99\n"

	img, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if img.Len() != 2 {
		t.Errorf("Expected scan to stop at end-of-file record, image has %d bytes", img.Len())
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	input := "\n:020000001234B8\n\n:02000200AABB97\n"

	img, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if img.Len() != 4 {
		t.Errorf("Expected 4 bytes, got %d", img.Len())
	}
}

func TestParseBadLeadingCharacter(t *testing.T) {
	_, err := ParseReader(strings.NewReader("garbage\n"))
	if err == nil {
		t.Fatal("Expected error for bad leading character")
	}
	formatErr, ok := err.(*FormatError)
	if !ok {
		t.Fatalf("Expected *FormatError, got %T", err)
	}
	if formatErr.Line != 1 {
		t.Errorf("Expected error on line 1, got %d", formatErr.Line)
	}
}

func TestParseShortRecord(t *testing.T) {
	_, err := ParseReader(strings.NewReader(":0200\n"))
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("Expected *FormatError, got %v", err)
	}
}

func TestParseBadHexDigits(t *testing.T) {
	_, err := ParseReader(strings.NewReader(":02000000ZZBB99\n"))
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("Expected *FormatError, got %v", err)
	}
}

func TestParseTruncatedPayload(t *testing.T) {
	_, err := ParseReader(strings.NewReader(":04000000AABB\n"))
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("Expected *FormatError, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hex"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	readErr, ok := err.(*ReadError)
	if !ok {
		t.Fatalf("Expected *ReadError, got %T", err)
	}
	if readErr.Unwrap() == nil {
		t.Error("Expected wrapped I/O error")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.hex")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	readErr, ok := err.(*ReadError)
	if !ok {
		t.Fatalf("Expected *ReadError, got %v", err)
	}
	if readErr.Unwrap() != nil {
		t.Errorf("Expected no wrapped error for empty file, got %v", readErr.Unwrap())
	}
}

func TestLoadFormatErrorPassesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hex")
	if err := os.WriteFile(path, []byte("not a hex file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("Expected *FormatError, got %v", err)
	}
}

func TestLoadValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fw.hex")
	content := ":0400000002030405E7\n:00000001FF\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Len() != 4 {
		t.Errorf("Expected 4 bytes, got %d", img.Len())
	}
}

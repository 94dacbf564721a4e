package pictype

import (
	"testing"

	"picloader/bootloader"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id       byte
		name     string
		family   bootloader.Family
		maxFlash int
	}{
		{0x31, "16F628A", bootloader.Family16F, 0x0800},
		{0x42, "16F88", bootloader.Family16F, 0x1000},
		{0x57, "16F876A", bootloader.Family16F, 0x2000},
		{0x58, "16F877A", bootloader.Family16F, 0x2000},
		{0x87, "18F452", bootloader.Family18F, 0x4000},
	}

	for _, tt := range tests {
		dev, ok := Lookup(tt.id)
		if !ok {
			t.Errorf("Lookup(%#02x) not found", tt.id)
			continue
		}
		if dev.Name != tt.name {
			t.Errorf("Lookup(%#02x): expected %s, got %s", tt.id, tt.name, dev.Name)
		}
		if dev.Type != tt.id {
			t.Errorf("Lookup(%#02x): type byte mismatch %#02x", tt.id, dev.Type)
		}
		if dev.Family != tt.family {
			t.Errorf("Lookup(%#02x): expected family %s, got %s", tt.id, tt.family, dev.Family)
		}
		if dev.MaxFlash != tt.maxFlash {
			t.Errorf("Lookup(%#02x): expected max flash %#x, got %#x", tt.id, tt.maxFlash, dev.MaxFlash)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup(0x00); ok {
		t.Error("Expected unknown type byte to miss")
	}
}

func TestRegister(t *testing.T) {
	Register(bootloader.Device{
		Name:     "16F999",
		Type:     0xEE,
		Family:   bootloader.Family16F,
		MaxFlash: 0x4000,
	})

	dev, ok := Lookup(0xEE)
	if !ok {
		t.Fatal("Expected registered device to resolve")
	}
	if dev.Name != "16F999" {
		t.Errorf("Expected 16F999, got %s", dev.Name)
	}
}

// Package pictype is the device identification table: it maps the type byte
// a TinyBld resident bootloader reports to the part it is running on.
//
// The table only carries the boards our firmware images actually ship on.
// Deployments with other parts can extend it at startup with Register; the
// bootloader package consumes the table as an opaque lookup function and
// does not care where entries come from.
package pictype

import "picloader/bootloader"

// devices is keyed by the identification byte of the stock TinyBld firmware
// build for each part. MaxFlash is the highest program word address.
var devices = map[byte]bootloader.Device{
	0x31: {Name: "16F628A", Type: 0x31, Family: bootloader.Family16F, MaxFlash: 0x0800},
	0x32: {Name: "16F648A", Type: 0x32, Family: bootloader.Family16F, MaxFlash: 0x1000},
	0x42: {Name: "16F88", Type: 0x42, Family: bootloader.Family16F, MaxFlash: 0x1000},
	0x55: {Name: "16F873A", Type: 0x55, Family: bootloader.Family16F, MaxFlash: 0x1000},
	0x56: {Name: "16F874A", Type: 0x56, Family: bootloader.Family16F, MaxFlash: 0x1000},
	0x57: {Name: "16F876A", Type: 0x57, Family: bootloader.Family16F, MaxFlash: 0x2000},
	0x58: {Name: "16F877A", Type: 0x58, Family: bootloader.Family16F, MaxFlash: 0x2000},
	0x85: {Name: "18F252", Type: 0x85, Family: bootloader.Family18F, MaxFlash: 0x4000},
	0x87: {Name: "18F452", Type: 0x87, Family: bootloader.Family18F, MaxFlash: 0x4000},
}

// Lookup resolves a bootloader identification byte. It satisfies
// bootloader.DeviceLookup.
func Lookup(id byte) (bootloader.Device, bool) {
	dev, ok := devices[id]
	return dev, ok
}

// Register adds or replaces a table entry, keyed by dev.Type. Call it before
// starting a session; the table is not synchronized.
func Register(dev bootloader.Device) {
	devices[dev.Type] = dev
}

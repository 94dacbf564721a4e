package bootloader

// Family identifies the PIC family the device belongs to. The family decides
// the address framing of a block write and the bounds of the transfer loop.
type Family int

const (
	// Family16F is the 16F8XX family. The only family this build can flash;
	// the reset vector relocation in package pic16 is specific to its
	// instruction encoding.
	Family16F Family = iota

	// Family18F uses the three-byte TBLPTR address framing.
	Family18F
)

func (f Family) String() string {
	switch f {
	case Family16F:
		return "16F8XX"
	case Family18F:
		return "18F"
	default:
		return "unknown"
	}
}

// Device describes a detected microcontroller. Immutable once produced by
// Detect.
type Device struct {
	// Name is the human-readable part name, e.g. "16F876A".
	Name string

	// Type is the identification byte the resident bootloader reports.
	Type byte

	// Family selects the wire framing and transfer bounds.
	Family Family

	// MaxFlash is the highest program-memory word address.
	MaxFlash int
}

// DeviceLookup resolves a bootloader identification byte to a device
// description. The table itself lives outside this package; see pictype.
type DeviceLookup func(id byte) (Device, bool)

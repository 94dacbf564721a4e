// Package bootloader implements the host side of the TinyBld-compatible
// resident bootloader protocol for PIC microcontrollers.
//
// A Session owns an open serial port for the duration of one flashing run
// and sequences the whole pipeline:
//
//	port, err := serial.Open(device, serial.WithBaudRate(115200))
//	if err != nil {
//	    return err
//	}
//	sess := bootloader.New(port,
//	    bootloader.WithDeviceLookup(pictype.Lookup),
//	    bootloader.WithCommandReset(resetSeq, replySeq, 3),
//	    bootloader.WithHardwareReset("/dev/ttyUSB1"),
//	    bootloader.WithProgress(func(pct int) { fmt.Printf("%d%%\n", pct) }),
//	)
//	defer sess.Close()
//	err = sess.Bootload(ctx, "firmware.hex")
//
// Bootload establishes contact (detect, falling back to command reset and
// then to a DTR hardware reset), loads the Intel-HEX image, relocates its
// reset vector so the bootloader regains control after reset, and streams
// the image in checksummed 0x20-word blocks, skipping blocks the image never
// touches.
//
// Every failure kind has its own error type — *DetectError, *ResetError,
// *WriteError (this package), *serial.OpenError, *hexfile.ReadError and
// *hexfile.FormatError — so callers can map outcomes to distinct reports.
// Each stage fails fast; the session never downgrades a lower-layer error.
package bootloader

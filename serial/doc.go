// Package serial provides the Linux serial transport used to talk to the
// resident PIC bootloader.
//
// The port is opened in raw 8N1 mode. Reads use the kernel VTIME mechanism:
// a read blocks up to the configured timeout and a timeout yields a short
// (possibly empty) result instead of an error, which is exactly the contract
// the bootloader protocol is written against.
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(115200),
//	    serial.WithReadTimeout(time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	reply, err := port.ReadAtMost(2)
//
// SetDTR exposes the DTR modem line for boards whose reset pin is wired to
// it; ListPorts enumerates candidate devices for the CLI.
package serial

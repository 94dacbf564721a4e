package serial

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Port represents an open serial connection to the target board.
//
// A Port is exclusively owned by whoever opened it: the bootloader session
// holds it for the whole flashing run and must Close it when the run ends,
// whether it succeeded, failed or was interrupted.
type Port interface {
	Close() error
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)

	// ReadAtMost reads up to n bytes, blocking no longer than the configured
	// read timeout. On timeout it returns whatever arrived, possibly nothing;
	// callers must check the length against what they expect.
	ReadAtMost(n int) ([]byte, error)

	// FlushInput discards any unread bytes sitting in the input buffer.
	FlushInput() error

	// SetDTR drives the DTR modem line. Boards wired for hardware reset tie
	// DTR to MCLR, so pulsing it restarts the microcontroller.
	SetDTR(state bool) error
}

// port is the concrete implementation of the Port interface
type port struct {
	mu     sync.RWMutex
	fd     int
	config Config
	closed bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// Open opens a serial port with the given device path and options
func Open(device string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, &OpenError{Device: device, Err: err}
		}
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, &OpenError{Device: device, Err: err}
	}

	if err := configurePort(fd, config); err != nil {
		unix.Close(fd)
		return nil, &OpenError{Device: device, Err: err}
	}

	return &port{
		fd:     fd,
		config: config,
	}, nil
}

// configurePort puts the fd into raw 8N1 mode with the configured speed and
// read timeout. VMIN=0/VTIME gives the return-what-arrived timeout semantics
// ReadAtMost is built on.
func configurePort(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %v", err)
	}

	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = uint8(config.ReadTimeoutTenths)

	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return err
	}

	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %v", err)
	}

	return nil
}

// Close closes the serial port
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	err := unix.Close(p.fd)
	p.closed = true
	return err
}

// Read reads data from the serial port. With VMIN=0/VTIME set, a read
// returns 0 bytes once the timeout expires without data.
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	return unix.Read(p.fd, buf)
}

// Write writes data to the serial port
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	return unix.Write(p.fd, data)
}

// ReadAtMost accumulates up to n bytes. Each underlying read blocks at most
// the VTIME timeout; the first read that times out with nothing ends the
// accumulation. A short result is not an error.
func (p *port) ReadAtMost(n int) ([]byte, error) {
	buf := make([]byte, n)
	total := 0
	for total < n {
		k, err := p.Read(buf[total:])
		if err != nil {
			return buf[:total], err
		}
		if k == 0 {
			break
		}
		total += k
	}
	return buf[:total], nil
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// SetDTR sets the DTR signal state
func (p *port) SetDTR(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	if state {
		return unix.IoctlSetInt(p.fd, unix.TIOCMBIS, unix.TIOCM_DTR)
	}
	return unix.IoctlSetInt(p.fd, unix.TIOCMBIC, unix.TIOCM_DTR)
}

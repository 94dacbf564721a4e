package bootloader

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"picloader/hexfile"
	"picloader/pic16"
	"picloader/serial"
)

// Wire protocol constants of the TinyBld resident bootloader.
const (
	probeByte = 0xC1 // identification request
	ackByte   = 'K'  // acknowledgment character
)

// hardwareResetBaud is the fixed speed used for the short-lived connection
// that pulses DTR. The line state, not the data rate, is what matters.
const hardwareResetBaud = 9600

// Session drives one flashing run against a resident TinyBld-compatible
// bootloader. It owns the serial port exclusively for the run's lifetime;
// Close releases it. A Session is not safe for concurrent use: the protocol
// is strictly request/reply over a single line.
type Session struct {
	port   serial.Port
	config Config
	device *Device
}

// New creates a Session over an open port.
//
// Example:
//
//	port, _ := serial.Open("/dev/ttyUSB0", serial.WithBaudRate(115200))
//	sess := bootloader.New(port,
//	    bootloader.WithDeviceLookup(pictype.Lookup),
//	    bootloader.WithCommandReset([]byte("RST"), []byte("ok"), 3),
//	)
//	defer sess.Close()
func New(port serial.Port, opts ...Option) *Session {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		port:   port,
		config: cfg,
	}
}

// Device returns the detected device, or nil before a successful Detect.
func (s *Session) Device() *Device {
	return s.device
}

// Close releases the serial port.
func (s *Session) Close() error {
	return s.port.Close()
}

// Detect identifies the microcontroller. The bootloader must be executing on
// the device at this moment: it answers the probe byte with its type byte
// followed by 'K'. On success the device description is stored on the
// session; any other outcome is a *DetectError.
func (s *Session) Detect() error {
	s.infof("detecting PIC...")

	if _, err := s.port.Write([]byte{probeByte}); err != nil {
		return &DetectError{Reason: "probe write failed", Err: err}
	}

	reply, err := s.port.ReadAtMost(2)
	if err != nil {
		return &DetectError{Reason: "probe read failed", Err: err}
	}
	if len(reply) != 2 {
		return &DetectError{Reason: "incorrect reply length"}
	}
	if reply[1] != ackByte {
		return &DetectError{Reason: "wrong reply"}
	}

	if s.config.Lookup == nil {
		return &DetectError{Reason: "no device table configured"}
	}
	dev, ok := s.config.Lookup(reply[0])
	if !ok {
		return &DetectError{Reason: fmt.Sprintf("unknown device type %#02x", reply[0])}
	}

	s.infof("detected PIC type %s (%s family), max flash address is %#x",
		dev.Name, dev.Family, dev.MaxFlash)

	// The reference tool built this failure and then forgot to raise it.
	// Flashing an 18F with 16F vector surgery would brick the application,
	// so an unsupported family is a hard detection failure here.
	if dev.Family != Family16F {
		s.errorf("unsupported PIC family %s", dev.Family)
		return &DetectError{Reason: fmt.Sprintf("unsupported PIC family %s", dev.Family)}
	}

	s.device = &dev
	return nil
}

// ResetByCommand writes resetSeq to make running application code jump back
// into the bootloader. When replySeq is non-empty the device must answer
// with it; the sequence is re-sent before every retry after the first, and
// after maxAttempts reads without a match the reset fails with *ResetError.
// An empty replySeq means the write alone is the reset action.
func (s *Session) ResetByCommand(resetSeq, replySeq []byte, maxAttempts int) error {
	s.infof("resetting PIC with %q sequence...", resetSeq)

	if _, err := s.port.Write(resetSeq); err != nil {
		return &ResetError{Err: err}
	}
	if len(replySeq) == 0 {
		return nil
	}

	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			s.warnf("failed to read PIC reply sequence on attempt #%d, retrying...", attempt-1)
			if _, err := s.port.Write(resetSeq); err != nil {
				return &ResetError{Err: err}
			}
		}

		reply, err := s.port.ReadAtMost(len(replySeq))
		if err != nil {
			return &ResetError{Err: err}
		}
		s.debugf("received %d bytes", len(reply))

		if bytes.Equal(reply, replySeq) {
			return nil
		}
		if attempt == maxAttempts {
			s.errorf("failed to reset PIC by command during %d attempt(s)", maxAttempts)
			return &ResetError{Attempts: maxAttempts}
		}
	}
}

// ResetByHardware pulses the DTR line of the named port for one second. The
// pulse uses its own short-lived 9600 baud connection, so the port may
// differ from the one the session talks over. No acknowledgment is read;
// call Detect afterwards to confirm the device came up in the bootloader.
func (s *Session) ResetByHardware(device string) error {
	return HardwareReset(device, s.config.Logger)
}

// HardwareReset asserts DTR on the named port for one second and releases
// it. Boards whose MCLR pin is wired to DTR restart into the bootloader.
func HardwareReset(device string, log Logger) error {
	if log != nil {
		log.Infof("resetting PIC with hardware reset...")
	}

	p, err := serial.Open(device, serial.WithBaudRate(hardwareResetBaud))
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.SetDTR(true); err != nil {
		return err
	}
	time.Sleep(time.Second)
	return p.SetDTR(false)
}

// Connect establishes contact with the bootloader, trying each strategy in
// turn: the bootloader may already be running, otherwise a command reset and
// then a hardware reset are attempted, each followed by a fresh detection.
// Every branch swallows its own failure to give the next one a chance; only
// when all are exhausted does Connect fail with *DetectError.
func (s *Session) Connect(ctx context.Context) error {
	s.infof("trying to determine whether bootloader is running...")
	if err := s.Detect(); err == nil {
		return nil
	}
	s.warnf("bootloader is not running")

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(s.config.ResetSequence) == 0 {
		s.warnf("reset sequence is not configured")
	} else {
		err := s.ResetByCommand(s.config.ResetSequence, s.config.ResetReply, s.config.ResetMaxAttempts)
		if err == nil {
			if err := s.Detect(); err == nil {
				return nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if s.config.HardwareResetPort == "" {
		s.warnf("hardware reset port is not configured")
	} else {
		if err := s.ResetByHardware(s.config.HardwareResetPort); err == nil {
			if err := s.Detect(); err == nil {
				return nil
			}
		}
	}

	return &DetectError{Reason: "no response from bootloader"}
}

// Bootload flashes the firmware file onto the device: establish contact if
// not already detected, load the HEX image, relocate its reset vector, and
// transfer the image block by block. It fails fast on the first unrecovered
// error from any stage and never retries the overall sequence.
func (s *Session) Bootload(ctx context.Context, firmwarePath string) error {
	if s.device == nil {
		if err := s.Connect(ctx); err != nil {
			return err
		}
	}

	s.infof("loading firmware from file %q...", firmwarePath)
	img, err := hexfile.Load(firmwarePath, hexfile.WithLogger(s.config.Logger))
	if err != nil {
		return err
	}

	pic16.MoveResetVector(img, s.device.MaxFlash, s.config.Logger)

	return s.transfer(ctx, img)
}

func (s *Session) reportProgress(percentage int) {
	if s.config.Progress != nil {
		s.config.Progress(percentage)
	}
}

func (s *Session) debugf(format string, args ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debugf(format, args...)
	}
}

func (s *Session) infof(format string, args ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Infof(format, args...)
	}
}

func (s *Session) warnf(format string, args ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Warnf(format, args...)
	}
}

func (s *Session) errorf(format string, args ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Errorf(format, args...)
	}
}

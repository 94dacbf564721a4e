package bootloader

import (
	"context"
	"fmt"

	"picloader/hexfile"
)

const (
	// blockWords is the fixed write-block size in program words.
	blockWords = 0x20

	// blockBytes is the same block in byte-addressed image terms.
	blockBytes = 2 * blockWords

	// reservedWords is the flash tail kept clear of application data: the
	// bootloader's own code, minus the couple of words the relocated reset
	// vector is allowed to reach into.
	reservedWords = 100
)

// writeBlock transmits one checksummed block to the bootloader.
//
// Frame layout, little-endian: the family-dependent address header
// ([high, low, len] for 16F, [0, high, low, len] for the 18F three-byte
// TBLPTR form), the data bytes verbatim, and a trailing checksum byte — the
// two's complement of the sum of every header and data byte. The bootloader
// answers a single 'K'; anything else fails the whole transfer.
func (s *Session) writeBlock(addrWord int, data []byte) error {
	if err := s.port.FlushInput(); err != nil {
		return &WriteError{Addr: addrWord, Err: err}
	}

	addrHigh := byte((addrWord / 256) & 0xFF)
	addrLow := byte(addrWord & 0xFF)
	dataLen := byte(len(data))

	var frame []byte
	switch s.device.Family {
	case Family16F:
		frame = []byte{addrHigh, addrLow, dataLen}
	case Family18F:
		// The 18F bootloader receives a three byte TBLPTR address; the
		// upper byte stays zero for the flash range this tool covers.
		frame = []byte{0, addrHigh, addrLow, dataLen}
	default:
		return &WriteError{Addr: addrWord, Err: fmt.Errorf("unsupported family %s", s.device.Family)}
	}
	frame = append(frame, data...)

	var sum byte
	for _, b := range frame {
		sum += b
	}
	frame = append(frame, -sum)

	if _, err := s.port.Write(frame); err != nil {
		return &WriteError{Addr: addrWord, Err: err}
	}

	reply, err := s.port.ReadAtMost(1)
	if err != nil {
		return &WriteError{Addr: addrWord, Err: err}
	}
	if len(reply) != 1 || reply[0] != ackByte {
		s.errorf("error writing memory block starting from position %#06x", addrWord)
		return &WriteError{Addr: addrWord}
	}

	return nil
}

// transfer walks program memory in blockWords steps from address 0 up to the
// bootloader-reserved tail and sends every block the image has bytes for.
// Each candidate block starts as 64 bytes of 0xFF — the erased-flash value —
// with image bytes overlaid; blocks the image never touched are skipped
// entirely to save transfer time. After every transmitted block the
// completion percentage is pushed to the progress sink.
func (s *Session) transfer(ctx context.Context, img hexfile.Image) error {
	endAddr := s.device.MaxFlash - reservedWords + 4

	bytesTotal := img.Len()
	bytesSent := 0

	for picPos := 0; picPos < endAddr; picPos += blockWords {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("transfer cancelled: %w", err)
		}

		block := make([]byte, blockBytes)
		for i := range block {
			block[i] = 0xFF
		}

		present := false
		for j := 0; j < blockBytes; j++ {
			if v, ok := img.At(2*picPos + j); ok {
				block[j] = v
				present = true
				bytesSent++
			}
		}

		if present {
			if err := s.writeBlock(picPos, block); err != nil {
				return err
			}
			s.reportProgress(bytesSent * 100 / bytesTotal)
		}
	}

	s.infof("flashing complete, %d bytes sent", bytesSent)
	return nil
}

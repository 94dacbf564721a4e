package serial

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound  = errors.New("serial device not found")
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")
	ErrPortClosed      = errors.New("serial port is closed")
)

// OpenError reports a serial device that could not be opened or configured.
// It wraps the underlying system or configuration error.
type OpenError struct {
	Device string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open serial port %s: %v", e.Device, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

package serial

import "time"

// Config holds the configuration for a serial port
type Config struct {
	BaudRate          int
	ReadTimeoutTenths int // VTIME setting in tenths of seconds (0-255)
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults for talking
// to a TinyBld-style resident bootloader (115200 8N1, 1 second read timeout).
func DefaultConfig() Config {
	return Config{
		BaudRate:          115200,
		ReadTimeoutTenths: 10,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithReadTimeout sets the read timeout. The kernel granularity is a tenth
// of a second; values are rounded up and capped at 25.5 seconds.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return ErrInvalidConfig
		}
		tenths := int((timeout + 100*time.Millisecond - 1) / (100 * time.Millisecond))
		if tenths > 255 {
			tenths = 255
		}
		c.ReadTimeoutTenths = tenths
		return nil
	}
}

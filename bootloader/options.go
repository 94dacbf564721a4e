package bootloader

// Config holds the session configuration.
type Config struct {
	// Lookup resolves bootloader identification bytes to devices (required).
	Lookup DeviceLookup

	// Logger receives session events (optional).
	Logger Logger

	// Progress receives the completion percentage after each block (optional).
	Progress ProgressFunc

	// ResetSequence is written to the port to make running application code
	// jump back into the bootloader. Empty disables command reset.
	ResetSequence []byte

	// ResetReply is the sequence the device answers a command reset with.
	// Empty means the write alone is the reset action, with no verification.
	ResetReply []byte

	// ResetMaxAttempts bounds the command reset retry loop.
	ResetMaxAttempts int

	// HardwareResetPort names the serial device whose DTR line is pulsed for
	// a hardware reset. Empty disables hardware reset.
	HardwareResetPort string
}

func defaultConfig() Config {
	return Config{
		ResetMaxAttempts: 3,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithDeviceLookup sets the device identification table.
func WithDeviceLookup(lookup DeviceLookup) Option {
	return func(c *Config) {
		c.Lookup = lookup
	}
}

// WithLogger sets the event sink for session operations.
func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithProgress sets the progress callback.
func WithProgress(progress ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = progress
	}
}

// WithCommandReset configures the software reset handshake. An empty reply
// sequence means the reset write is not verified.
func WithCommandReset(resetSeq, replySeq []byte, maxAttempts int) Option {
	return func(c *Config) {
		c.ResetSequence = resetSeq
		c.ResetReply = replySeq
		if maxAttempts > 0 {
			c.ResetMaxAttempts = maxAttempts
		}
	}
}

// WithHardwareReset names the port whose DTR line resets the board.
func WithHardwareReset(device string) Option {
	return func(c *Config) {
		c.HardwareResetPort = device
	}
}

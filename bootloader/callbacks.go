package bootloader

// ProgressFunc receives the flashing completion percentage (0-100) after
// every transmitted block. Implementations should return quickly; the
// transfer blocks while the callback runs. Persistence (progress files,
// spinners) is the caller's business — the session only hands over the value.
type ProgressFunc func(percentage int)

// Logger is the structured-event sink the session reports through. It is
// printf-style so that a *logrus.Logger satisfies it directly; nil disables
// logging.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

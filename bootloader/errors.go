package bootloader

import "fmt"

// DetectError reports that the microcontroller could not be identified:
// probe unanswered, reply malformed, device unknown, or family unsupported.
type DetectError struct {
	Reason string
	Err    error
}

func (e *DetectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("PIC not detected: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("PIC not detected: %s", e.Reason)
}

func (e *DetectError) Unwrap() error { return e.Err }

// ResetError reports that a command reset exhausted its retry budget without
// the expected reply sequence arriving.
type ResetError struct {
	Attempts int
	Err      error
}

func (e *ResetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to reset PIC by command: %v", e.Err)
	}
	return fmt.Sprintf("failed to reset PIC by command during %d attempt(s)", e.Attempts)
}

func (e *ResetError) Unwrap() error { return e.Err }

// WriteError reports a block write that was not acknowledged by the
// bootloader. Addr is the word address of the failed block.
type WriteError struct {
	Addr int
	Err  error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error writing memory block at %#06x: %v", e.Addr, e.Err)
	}
	return fmt.Sprintf("error writing memory block at %#06x: no acknowledgment", e.Addr)
}

func (e *WriteError) Unwrap() error { return e.Err }

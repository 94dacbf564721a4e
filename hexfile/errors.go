package hexfile

import "fmt"

// ReadError reports a firmware file that could not be read, or one that
// yielded no data at all. It wraps the underlying I/O error when there is one.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to read firmware %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("no firmware data found in %s", e.Path)
}

func (e *ReadError) Unwrap() error { return e.Err }

// FormatError reports a record line that violates the expected format.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

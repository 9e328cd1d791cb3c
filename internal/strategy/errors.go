package strategy

import "fmt"

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrInvalidPID = Error("pid must be a positive integer within the pid_t range")
)

// MarkerError represents a storage fault on a marker file. It carries the
// operation, the marker path and the PID involved, if any.
type MarkerError struct {
	Op   string
	Path string
	PID  int
	Err  error
}

func (e *MarkerError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("%s marker %s (pid %d): %v", e.Op, e.Path, e.PID, e.Err)
	}
	return fmt.Sprintf("%s marker %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *MarkerError) Unwrap() error {
	return e.Err
}

package lock

import "fmt"

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	// ErrCouldNotCreate is reported when a marker could not be written
	// although the lock state allowed it.
	ErrCouldNotCreate = Error("could not create lock")
	// ErrAlreadyLocked is reported by Do when another process legitimately
	// holds the lock.
	ErrAlreadyLocked = Error("requested lock has been already acquired")
	// ErrInvalidConfig is reported by New for out of range options.
	ErrInvalidConfig = Error("invalid lock configuration")

	errGuardBusy = Error("lock decision guard is held by another process")
)

// CreateError is returned by Acquire when every attempt failed to create
// the marker. It matches ErrCouldNotCreate with errors.Is and unwraps to
// the fault of the last attempt, if storage reported one.
type CreateError struct {
	Attempts int
	Err      error
}

func (e *CreateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s after %d attempt(s): %v", ErrCouldNotCreate, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s after %d attempt(s)", ErrCouldNotCreate, e.Attempts)
}

// Unwrap returns the underlying storage fault.
func (e *CreateError) Unwrap() error {
	return e.Err
}

// Is makes every CreateError match ErrCouldNotCreate.
func (e *CreateError) Is(target error) bool {
	return target == ErrCouldNotCreate
}

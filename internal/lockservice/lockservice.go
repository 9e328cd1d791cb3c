package lockservice

import "github.com/SystemBuilders/pidlock/internal/lockstate"

// LockService describes a lock service component that maintains a set of
// PID locks on behalf of the process running it. Each descriptor names one
// protected resource, backed by one marker on the local filesystem, so
// independent processes on the host agree on who holds it.
type LockService interface {
	// Acquire takes the lock on the given descriptor for this process.
	// An error is generated if the same isn't possible for any reason,
	// including another live process holding the lock.
	Acquire(Descriptors) error
	// Release gives up the lock on the given descriptor. An error is
	// generated if this process does not hold the lock.
	Release(Descriptors) error
	// CheckAcquired checks whether a lock is held on the given descriptor.
	// It also returns the PID of the owner, as recorded in the marker.
	CheckAcquired(Descriptors) (string, bool)
	// CheckReleased checks whether a lock has been released (or not acquired) on the
	// given descriptor. Returns true if there is no lock on the descriptor.
	CheckReleased(Descriptors) bool
	// State classifies the lock on the given descriptor.
	State(Descriptors) (lockstate.LockState, error)
}

// Descriptors describe the type of data that a lock acquiring component must describe.
type Descriptors interface {
	ID() string
}

package lockclient

import (
	"github.com/SystemBuilders/pidlock/internal/lockservice"
	"github.com/SystemBuilders/pidlock/internal/lockstate"
)

// Client describes a client that can be used to interact with a running
// pidlock node. Locks taken through a node are owned by the node's
// process, not by the caller, and are released when the node shuts down.
type Client interface {
	// Acquire asks the node to take the lock on the descriptor.
	// lockservice.ErrFileAcquired is returned when another process
	// holds it.
	Acquire(lockservice.Descriptors) error
	// Release asks the node to give up the lock on the descriptor.
	// lockservice.ErrCantReleaseFile is returned when the node does not
	// hold it.
	Release(lockservice.Descriptors) error
	// CheckAcquired returns the owner PID of a held lock, and false
	// when the lock is free.
	CheckAcquired(lockservice.Descriptors) (string, bool, error)
	// State returns the classified state of the lock.
	State(lockservice.Descriptors) (lockstate.LockState, error)
}

// Config describes the configuration of the node to talk to.
type Config interface {
	// IP provides the IP address where the server is intended to run.
	IP() string
	// Port provides the port where the server is supposed to run.
	Port() string
}

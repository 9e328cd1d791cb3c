package lock

import "github.com/gofrs/flock"

// Guard serializes the classify, clean and create sequence of an attempt
// between cooperating processes. Without it two engines that both find an
// orphaned marker may each clean and recreate it, and both believe they
// own the lock.
//
// TryLock must not block. A busy guard makes the attempt inconclusive.
type Guard interface {
	TryLock() (bool, error)
	Unlock() error
}

var _ Guard = (*flock.Flock)(nil)

// NewFileGuard returns a guard holding an advisory flock on path. The
// guard file is never removed; removing it would let two processes lock
// different inodes.
func NewFileGuard(path string) *flock.Flock {
	return flock.New(path)
}

package lock

import (
	"time"

	"github.com/SystemBuilders/pidlock/internal/lockstate"
)

// Facts exposes what storage and the liveness probe know about a marker.
// Classify consults them lazily and in decision order, so liveness is only
// probed for a foreign owner and age is only read when a maximum is set.
type Facts interface {
	Valid() bool
	Exists() bool
	OwnerPID() (int, bool)
	OwnerAlive() bool
	CreatedAt() time.Time
}

// Classify maps the facts about a marker to a lock state. The first
// matching rule wins:
//
//	invalid storage             INVALID
//	no marker                   UNLOCKED
//	marker records self         OWNER
//	owner not running           ORPHANED
//	older than maxAge           OUTDATED
//	otherwise                   LOCKED
//
// A maxAge of zero disables the age check. A zero creation time is
// infinitely old.
func Classify(f Facts, self int, now time.Time, maxAge time.Duration) lockstate.LockState {
	if !f.Valid() {
		return lockstate.Invalid
	}
	if !f.Exists() {
		return lockstate.Unlocked
	}
	if pid, ok := f.OwnerPID(); ok && pid == self {
		return lockstate.Owner
	}
	if !f.OwnerAlive() {
		return lockstate.Orphaned
	}
	if maxAge > 0 && age(now, f.CreatedAt()) > maxAge {
		return lockstate.Outdated
	}
	return lockstate.Locked
}

func age(now, created time.Time) time.Duration {
	if created.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(created)
}

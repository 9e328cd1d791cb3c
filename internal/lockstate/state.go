package lockstate

import "fmt"

// LockState is the outcome of inspecting a lock marker. Every decision the
// acquisition engine makes (acquire, wait, clean, kill) is read off the
// attributes of a state; nothing else branches on raw storage facts.
type LockState int

// These are the states of a lock.
const (
	// Invalid means the storage reported itself corrupted.
	Invalid LockState = iota
	// Locked means another live process holds a fresh marker.
	Locked
	// Unlocked means there is no marker.
	Unlocked
	// Owner means the marker records the current process.
	Owner
	// Orphaned means the recorded owner is no longer running.
	Orphaned
	// Outdated means the owner is alive but the marker is older than the
	// configured maximum age.
	Outdated
)

type attributes struct {
	locked     bool
	canAcquire bool
	owner      bool
	clean      bool
	kill       bool
}

var table = [...]attributes{
	//          locked  acquire owner  clean  kill
	Invalid:  {false, true, false, true, true},
	Locked:   {true, false, false, false, false},
	Unlocked: {false, true, false, false, false},
	Owner:    {true, false, true, false, false},
	Orphaned: {true, true, false, true, false},
	Outdated: {true, true, false, true, true},
}

var names = [...]string{
	Invalid:  "INVALID",
	Locked:   "LOCKED",
	Unlocked: "UNLOCKED",
	Owner:    "OWNER",
	Orphaned: "ORPHANED",
	Outdated: "OUTDATED",
}

// All returns every state in declaration order.
func All() []LockState {
	return []LockState{Invalid, Locked, Unlocked, Owner, Orphaned, Outdated}
}

func (s LockState) valid() bool {
	return s >= Invalid && int(s) < len(table)
}

// attrs returns all-false attributes for values outside the enumeration.
func (s LockState) attrs() attributes {
	if !s.valid() {
		return attributes{}
	}
	return table[s]
}

// IsLocked reports whether a marker is present and considered held.
func (s LockState) IsLocked() bool { return s.attrs().locked }

// CanAcquire reports whether the engine may try to create a marker.
func (s LockState) CanAcquire() bool { return s.attrs().canAcquire }

// IsOwner reports whether the current process holds the lock.
func (s LockState) IsOwner() bool { return s.attrs().owner }

// ShouldClean reports whether the existing marker must be removed before
// a new one is created.
func (s LockState) ShouldClean() bool { return s.attrs().clean }

// ShouldKillOldProcess reports whether the recorded owner must be
// terminated before the marker is broken.
func (s LockState) ShouldKillOldProcess() bool { return s.attrs().kill }

func (s LockState) String() string {
	if !s.valid() {
		return fmt.Sprintf("LockState(%d)", int(s))
	}
	return names[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s LockState) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("unknown lock state %d", int(s))
	}
	return []byte(names[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LockState) UnmarshalText(text []byte) error {
	for i, name := range names {
		if name == string(text) {
			*s = LockState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown lock state %q", text)
}

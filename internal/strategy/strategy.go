package strategy

import "time"

// Strategy describes the storage of a lock marker. A marker records the
// PID of the owning process together with the time it was created.
//
// Create is the only operation that must be atomic: two processes racing
// to create a marker must see exactly one of them succeed. Mutual
// exclusion rests entirely on it.
type Strategy interface {
	// IsValid is a sanity check of the storage. An invalid storage is
	// broken unconditionally by the acquisition engine.
	IsValid() bool
	// Exists reports whether a marker is present.
	Exists() bool
	// Create writes a marker recording pid. It returns false without an
	// error when a marker already exists and never overwrites one.
	Create(pid int) (bool, error)
	// Clean removes the marker. Removing an absent marker is not an error.
	Clean() error
	// ReadPID returns the recorded owner. A missing or unparseable marker
	// yields false rather than an error.
	ReadPID() (int, bool)
	// CreatedAt returns the creation time of the marker, or the zero time
	// when it can't be determined.
	CreatedAt() time.Time
}

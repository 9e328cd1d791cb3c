package strategy

import (
	"crypto/rand"
	"os"
	"time"

	"github.com/oklog/ulid"
	"github.com/rs/zerolog"
)

var _ Strategy = (*AtomicFile)(nil)

// AtomicFile is a PID file strategy that never exposes a partially
// written marker. The PID is written to a uniquely named sibling first and
// then published with a hard link, which fails instead of replacing an
// existing marker.
//
// With File, a reader racing the writer may find an empty marker, classify
// it as orphaned and break a lock that was just taken. AtomicFile closes
// that window.
type AtomicFile struct {
	*File
}

// NewAtomicFile returns an atomic file strategy for the marker at path.
func NewAtomicFile(path string, log zerolog.Logger) *AtomicFile {
	return &AtomicFile{File: NewFile(path, log)}
}

// Create writes the marker through a temporary file and links it in place.
func (a *AtomicFile) Create(pid int) (bool, error) {
	if !validPID(int64(pid)) {
		return false, &MarkerError{Op: "create", Path: a.path, PID: pid, Err: ErrInvalidPID}
	}

	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return false, &MarkerError{Op: "create", Path: a.path, PID: pid, Err: err}
	}
	tmp := a.path + "." + id.String() + ".tmp"

	fd, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false, &MarkerError{Op: "create", Path: tmp, PID: pid, Err: err}
	}
	defer os.Remove(tmp)

	if err := syncPID(fd, pid); err != nil {
		return false, &MarkerError{Op: "write", Path: tmp, PID: pid, Err: err}
	}

	if err := os.Link(tmp, a.path); err != nil {
		if os.IsExist(err) {
			a.log.Debug().Int("pid", pid).Msg("marker already exists")
			return false, nil
		}
		return false, &MarkerError{Op: "link", Path: a.path, PID: pid, Err: err}
	}

	a.log.Debug().Int("pid", pid).Str("tmp", tmp).Msg("marker published")
	return true, nil
}

func syncPID(fd *os.File, pid int) error {
	if _, err := fd.WriteString(formatPID(pid)); err != nil {
		_ = fd.Close()
		return err
	}
	if err := fd.Sync(); err != nil {
		_ = fd.Close()
		return err
	}
	return fd.Close()
}

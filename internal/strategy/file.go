package strategy

import (
	"bufio"
	"bytes"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var _ Strategy = (*File)(nil)

// File is a PID file strategy. The marker is a single line holding the
// decimal PID of the owner, and its modification time is the creation
// time of the lock.
type File struct {
	path string
	log  zerolog.Logger
}

// NewFile returns a file strategy for the marker at path.
func NewFile(path string, log zerolog.Logger) *File {
	return &File{
		path: path,
		log:  log.With().Str("pidfile", path).Logger(),
	}
}

func (f *File) String() string {
	return f.path
}

// IsValid reports false when something other than a regular file sits at
// the marker path.
func (f *File) IsValid() bool {
	info, err := os.Lstat(f.path)
	if err != nil {
		return true
	}
	if !info.Mode().IsRegular() {
		f.
			log.
			Warn().
			Str("mode", info.Mode().String()).
			Msg("marker is not a regular file")
		return false
	}
	return true
}

// Exists reports whether anything is present at the marker path.
func (f *File) Exists() bool {
	_, err := os.Lstat(f.path)
	return err == nil
}

// Create writes the marker with O_EXCL so an existing marker is never
// overwritten.
func (f *File) Create(pid int) (bool, error) {
	if !validPID(int64(pid)) {
		return false, &MarkerError{Op: "create", Path: f.path, PID: pid, Err: ErrInvalidPID}
	}

	fd, err := os.OpenFile(f.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			f.log.Debug().Int("pid", pid).Msg("marker already exists")
			return false, nil
		}
		return false, &MarkerError{Op: "create", Path: f.path, PID: pid, Err: err}
	}

	if err := writePID(fd, pid); err != nil {
		// The file is ours, created exclusively above.
		_ = os.Remove(f.path)
		return false, &MarkerError{Op: "write", Path: f.path, PID: pid, Err: err}
	}

	f.log.Debug().Int("pid", pid).Msg("marker created")
	return true, nil
}

// Clean removes the marker. A missing marker is not an error.
func (f *File) Clean() error {
	f.log.Debug().Msg("removing marker")
	if err := os.Remove(f.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		f.log.Error().Err(err).Msg("could not remove marker")
		return &MarkerError{Op: "remove", Path: f.path, Err: err}
	}
	return nil
}

// ReadPID reads the owner recorded in the marker.
func (f *File) ReadPID() (int, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.log.Debug().Err(err).Msg("could not read marker")
		return 0, false
	}

	pid, err := parsePID(data)
	if err != nil {
		f.log.Warn().Err(err).Msg("could not parse marker content")
		return 0, false
	}
	return pid, true
}

// CreatedAt returns the modification time of the marker.
func (f *File) CreatedAt() time.Time {
	info, err := os.Lstat(f.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func writePID(fd *os.File, pid int) error {
	if _, err := fd.WriteString(formatPID(pid)); err != nil {
		_ = fd.Close()
		return err
	}
	return fd.Close()
}

// formatPID renders the marker body: the decimal PID and a newline.
func formatPID(pid int) string {
	return strconv.Itoa(pid) + "\n"
}

// parsePID parses the first line of a marker. Surrounding whitespace is
// tolerated, anything else that isn't a pid_t sized positive integer is
// rejected.
func parsePID(data []byte) (int, error) {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	pid, err := strconv.ParseInt(string(bytes.TrimSpace(line)), 10, 64)
	if err != nil {
		return 0, err
	}
	if !validPID(pid) {
		return 0, ErrInvalidPID
	}
	return int(pid), nil
}

// validPID reports whether pid is positive and fits the kernel's pid_t.
func validPID(pid int64) bool {
	return pid > 0 && pid <= math.MaxInt32
}

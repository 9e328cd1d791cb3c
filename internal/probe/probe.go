package probe

import (
	"math"

	"github.com/rs/zerolog"
)

// Probe answers whether a process is running and can forcibly terminate it.
type Probe interface {
	// IsAlive reports whether pid refers to a running process. Every
	// failure, including an invalid pid, reads as "not alive".
	IsAlive(pid int) bool
	// Terminate sends a forceful termination signal to pid.
	Terminate(pid int) error
}

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrInvalidPID = Error("refusing to signal a pid outside the pid_t range")
)

// validPID reports whether pid survives the conversion to the kernel's
// 32-bit pid_t as the same positive value.
func validPID(pid int) bool {
	return pid > 0 && int64(pid) <= math.MaxInt32
}

var _ Probe = (*Signal)(nil)

// Signal probes processes with signals: signal 0 for liveness and SIGKILL
// for termination.
//
// Permission errors are reported as "not alive", so a marker left by a
// process of another user is breakable.
type Signal struct {
	log zerolog.Logger
}

// NewSignal returns a signal based probe.
func NewSignal(log zerolog.Logger) *Signal {
	return &Signal{log: log}
}

// IsAlive checks pid with signal 0.
func (s *Signal) IsAlive(pid int) bool {
	if !validPID(pid) {
		s.log.Debug().Int("pid", pid).Msg("pid owner does not work")
		return false
	}
	if err := signalAlive(pid); err != nil {
		s.log.Debug().Int("pid", pid).Err(err).Msg("pid owner does not work")
		return false
	}
	s.log.Debug().Int("pid", pid).Msg("pid owner is working")
	return true
}

// Terminate kills pid. Non-positive pids are refused, since the kill
// system call would address a whole process group, and so are pids that
// would wrap around when truncated to pid_t.
func (s *Signal) Terminate(pid int) error {
	if !validPID(pid) {
		return ErrInvalidPID
	}
	s.log.Info().Int("pid", pid).Msg("terminating pid owner")
	return signalKill(pid)
}

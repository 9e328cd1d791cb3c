package lock

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SystemBuilders/pidlock/internal/lockstate"
	"github.com/SystemBuilders/pidlock/internal/probe"
	"github.com/SystemBuilders/pidlock/internal/strategy"
)

// Lock is an inter-process lock backed by a marker recording the PID of
// its owner. A Lock uses its strategy exclusively; build one Lock per
// protected resource and keep it for the lifetime of the process.
//
// Ownership is never cached. Every query re-reads the marker, so a lock
// broken by another process is noticed on the next call.
//
// A Lock is not safe for concurrent use by multiple goroutines.
type Lock struct {
	strategy strategy.Strategy
	probe    probe.Probe
	cfg      Config
	log      zerolog.Logger
}

// New creates a Lock over the given strategy and liveness probe.
func New(s strategy.Strategy, p probe.Probe, opts ...Option) (*Lock, error) {
	if s == nil || p == nil {
		return nil, fmt.Errorf("%w: strategy and probe are required", ErrInvalidConfig)
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger.With().Int("self", cfg.PID).Logger()
	if name, ok := s.(fmt.Stringer); ok {
		log = log.With().Str("marker", name.String()).Logger()
	}

	return &Lock{
		strategy: s,
		probe:    p,
		cfg:      cfg,
		log:      log,
	}, nil
}

// PID returns the PID this lock records in markers.
func (l *Lock) PID() int {
	return l.cfg.PID
}

// State classifies the marker as it is now.
func (l *Lock) State() lockstate.LockState {
	state, _ := l.classify()
	return state
}

// HasLock reports whether the marker currently records this process.
func (l *Lock) HasLock() bool {
	return l.State().IsOwner()
}

// Acquire obtains the lock. It returns Owner when the lock is held by this
// process afterwards, and Locked when another live process holds a fresh
// marker; in that case Acquire returns at once without retrying.
//
// Markers that are invalid, orphaned or outdated are broken. An outdated
// or invalid marker's owner is killed first.
//
// A failed creation is retried after the configured sleeptime while
// attempts remain; when they run out a *CreateError is returned. Storage
// faults while cleaning are returned immediately.
func (l *Lock) Acquire() (lockstate.LockState, error) {
	if l.HasLock() {
		return lockstate.Owner, nil
	}

	var lastErr error
	for attempt := 1; attempt <= l.cfg.Tries; attempt++ {
		state, err := l.attempt()
		switch {
		case err == nil:
			return state, nil
		case errors.Is(err, ErrCouldNotCreate):
			lastErr = err
		case err == errGuardBusy:
			// A busy guard never hides an earlier creation failure.
			if lastErr == nil {
				lastErr = err
			}
		default:
			return state, err
		}

		l.log.Debug().Err(err).Int("attempt", attempt).Int("tries", l.cfg.Tries).Msg("attempt failed")
		if attempt < l.cfg.Tries {
			l.cfg.Delay(l.cfg.Sleeptime)
		}
	}

	if errors.Is(lastErr, ErrCouldNotCreate) {
		return lockstate.Locked, &CreateError{Attempts: l.cfg.Tries, Err: errors.Unwrap(lastErr)}
	}
	return lockstate.Locked, nil
}

// attempt classifies the marker and, when allowed, breaks it and creates a
// new one. A failed creation is reported as an error wrapping
// ErrCouldNotCreate.
func (l *Lock) attempt() (lockstate.LockState, error) {
	if g := l.cfg.Guard; g != nil {
		locked, err := g.TryLock()
		if err != nil {
			return lockstate.Locked, fmt.Errorf("lock decision guard: %w", err)
		}
		if !locked {
			return lockstate.Locked, errGuardBusy
		}
		defer func() {
			if uerr := g.Unlock(); uerr != nil {
				l.log.Warn().Err(uerr).Msg("could not release decision guard")
			}
		}()
	}

	state, f := l.classify()
	l.log.Debug().Str("state", state.String()).Msg("classified")

	if !state.CanAcquire() {
		return state, nil
	}

	if state.ShouldKillOldProcess() {
		l.killOldProcess(f)
	}

	if state.ShouldClean() {
		if err := l.strategy.Clean(); err != nil {
			return state, err
		}
	}

	created, err := l.strategy.Create(l.cfg.PID)
	if err != nil {
		return state, &attemptError{err: err}
	}
	if !created {
		return state, &attemptError{}
	}

	l.log.Info().Str("previous", state.String()).Msg("lock acquired")
	return lockstate.Owner, nil
}

// attemptError is a single failed creation.
type attemptError struct {
	err error
}

func (e *attemptError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", ErrCouldNotCreate, e.err)
	}
	return string(ErrCouldNotCreate)
}

func (e *attemptError) Unwrap() error        { return e.err }
func (e *attemptError) Is(target error) bool { return target == ErrCouldNotCreate }

// killOldProcess terminates the recorded owner. Failures are logged only;
// the marker is broken either way.
func (l *Lock) killOldProcess(f *facts) {
	pid, ok := f.OwnerPID()
	if !ok {
		l.log.Debug().Msg("no recorded owner to terminate")
		return
	}
	if pid == l.cfg.PID {
		return
	}
	if err := l.probe.Terminate(pid); err != nil {
		l.log.Warn().Err(err).Int("pid", pid).Msg("could not terminate old process")
	}
}

// Release removes the marker if, and only if, it records this process at
// the time of the call. It returns the lock itself so calls can be chained.
func (l *Lock) Release() (*Lock, error) {
	if !l.HasLock() {
		l.log.Debug().Msg("release skipped, not the owner")
		return l, nil
	}
	if err := l.strategy.Clean(); err != nil {
		return l, err
	}
	l.log.Info().Msg("lock released")
	return l, nil
}

// Do runs fn while holding the lock. It returns ErrAlreadyLocked when the
// lock is held elsewhere, in which case fn is not run. Once fn has run the
// lock is released whatever fn returned, including when it panics.
func (l *Lock) Do(fn func() error) (err error) {
	state, err := l.Acquire()
	if err != nil {
		return err
	}
	if !state.IsOwner() {
		return fmt.Errorf("%w: state %s", ErrAlreadyLocked, state)
	}

	defer func() {
		if _, rerr := l.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}

func (l *Lock) classify() (lockstate.LockState, *facts) {
	f := &facts{lock: l}
	return Classify(f, l.cfg.PID, l.cfg.Clock(), l.cfg.MaxAge), f
}

var _ Facts = (*facts)(nil)

// facts reads storage and probes liveness on demand. The owner PID is read
// once per classification so that a kill targets the classified owner.
type facts struct {
	lock    *Lock
	pid     int
	hasPID  bool
	pidRead bool
}

func (f *facts) Valid() bool  { return f.lock.strategy.IsValid() }
func (f *facts) Exists() bool { return f.lock.strategy.Exists() }

func (f *facts) OwnerPID() (int, bool) {
	if !f.pidRead {
		f.pid, f.hasPID = f.lock.strategy.ReadPID()
		f.pidRead = true
	}
	return f.pid, f.hasPID
}

// OwnerAlive treats a marker without a readable owner as abandoned.
func (f *facts) OwnerAlive() bool {
	pid, ok := f.OwnerPID()
	if !ok {
		return false
	}
	return f.lock.probe.IsAlive(pid)
}

func (f *facts) CreatedAt() time.Time { return f.lock.strategy.CreatedAt() }

package lockservice

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/SystemBuilders/pidlock/internal/lock"
	"github.com/SystemBuilders/pidlock/internal/lockstate"
	"github.com/SystemBuilders/pidlock/internal/probe"
	"github.com/SystemBuilders/pidlock/internal/strategy"
)

// markerExt is appended to descriptor IDs to name marker files.
const markerExt = ".pid"

// SafeLockMap is the lockservice's registry of locks, one per descriptor.
type SafeLockMap struct {
	LockMap map[string]*entry
	Mutex   sync.Mutex
}

// entry is one resource. Its mutex serializes the operations on the Lock,
// which is not safe for concurrent use.
type entry struct {
	mu     sync.Mutex
	lock   *lock.Lock
	marker *strategy.AtomicFile
}

// SimpleConfig implements Config.
type SimpleConfig struct {
	IPAddr   string
	PortAddr string
}

// LockRequest is a struct used by the client to
// communicate to the HTTP server.
type LockRequest struct {
	FileID string `json:"FileID"`
}

// LockCheckRequest asks for the owner of a lock.
type LockCheckRequest struct {
	FileID string `json:"FileID"`
}

// CheckAcquireRes is the response to a LockCheckRequest.
type CheckAcquireRes struct {
	Owner string `json:"Owner"`
}

// StateRes describes the state of a lock and the attributes the
// acquisition engine derives from it.
type StateRes struct {
	FileID               string              `json:"FileID"`
	State                lockstate.LockState `json:"State"`
	IsLocked             bool                `json:"IsLocked"`
	CanAcquire           bool                `json:"CanAcquire"`
	IsOwner              bool                `json:"IsOwner"`
	ShouldClean          bool                `json:"ShouldClean"`
	ShouldKillOldProcess bool                `json:"ShouldKillOldProcess"`
}

// NewStateRes describes state for the resource id.
func NewStateRes(id string, state lockstate.LockState) StateRes {
	return StateRes{
		FileID:               id,
		State:                state,
		IsLocked:             state.IsLocked(),
		CanAcquire:           state.CanAcquire(),
		IsOwner:              state.IsOwner(),
		ShouldClean:          state.ShouldClean(),
		ShouldKillOldProcess: state.ShouldKillOldProcess(),
	}
}

// IP returns the IP address from SimpleConfig
func (scfg *SimpleConfig) IP() string {
	return scfg.IPAddr
}

// Port returns the port from SimpleConfig.
func (scfg *SimpleConfig) Port() string {
	return scfg.PortAddr
}

var _ LockService = (*SimpleLockService)(nil)

// SimpleLockService is a lock service that implements LockService.
// Every descriptor maps to an atomic PID file in a single directory, and
// to one lock engine kept for the lifetime of the service.
type SimpleLockService struct {
	log     zerolog.Logger
	dir     string
	probe   probe.Probe
	opts    []lock.Option
	lockMap *SafeLockMap
}

var _ Descriptors = (*SimpleDescriptor)(nil)

// SimpleDescriptor implements the Descriptors interface.
type SimpleDescriptor struct {
	FileID string
}

// ID represents the distinguishable ID of the descriptor.
func (sd *SimpleDescriptor) ID() string {
	return sd.FileID
}

// NewSimpleConfig returns a new simple configuration
func NewSimpleConfig(IPAddr, PortAddr string) *SimpleConfig {
	return &SimpleConfig{
		IPAddr:   IPAddr,
		PortAddr: PortAddr,
	}
}

// NewSimpleDescriptor returns a new simple descriptor
func NewSimpleDescriptor(FileID string) *SimpleDescriptor {
	return &SimpleDescriptor{
		FileID: FileID,
	}
}

// NewSimpleLockService creates and returns a new lock service ready to use.
// Markers live in dir; opts configure every lock engine the service builds.
func NewSimpleLockService(log zerolog.Logger, dir string, p probe.Probe, opts ...lock.Option) *SimpleLockService {
	safeLockMap := &SafeLockMap{
		LockMap: make(map[string]*entry),
	}
	return &SimpleLockService{
		log:     log,
		dir:     dir,
		probe:   p,
		opts:    opts,
		lockMap: safeLockMap,
	}
}

// Acquire function lets the service take the lock on an object.
func (ls *SimpleLockService) Acquire(sd Descriptors) error {
	e, err := ls.entryFor(sd)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.lock.Acquire()
	if err != nil {
		ls.
			log.
			Error().
			Err(err).
			Str("descriptor", sd.ID()).
			Msg("can't acquire")
		return err
	}
	if !state.IsOwner() {
		ls.
			log.
			Debug().
			Str("descriptor", sd.ID()).
			Str("state", state.String()).
			Msg("can't acquire, already been acquired")
		return ErrFileAcquired
	}
	ls.
		log.
		Debug().
		Str("descriptor", sd.ID()).
		Msg("locked")
	return nil
}

// Release lets the service give up the lock on an object. Only a lock held
// by this process is released.
func (ls *SimpleLockService) Release(sd Descriptors) error {
	e, err := ls.entryFor(sd)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lock.HasLock() {
		ls.
			log.
			Debug().
			Str("descriptor", sd.ID()).
			Msg("can't release, hasn't been acquired")
		return ErrCantReleaseFile
	}
	if _, err := e.lock.Release(); err != nil {
		return err
	}
	ls.
		log.
		Debug().
		Str("descriptor", sd.ID()).
		Msg("released")
	return nil
}

// CheckAcquired returns the owner PID and true if the file is locked.
func (ls *SimpleLockService) CheckAcquired(sd Descriptors) (string, bool) {
	e, err := ls.entryFor(sd)
	if err != nil {
		return "", false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lock.State().IsLocked() {
		ls.
			log.
			Debug().
			Str("descriptor", sd.ID()).
			Msg("check Acquire failure")
		return "", false
	}

	owner := ""
	if pid, ok := e.marker.ReadPID(); ok {
		owner = strconv.Itoa(pid)
	}
	ls.
		log.
		Debug().
		Str("descriptor", sd.ID()).
		Str("owner", owner).
		Msg("checkAcquire success")
	return owner, true
}

// CheckReleased returns true if the file is not locked.
func (ls *SimpleLockService) CheckReleased(sd Descriptors) bool {
	e, err := ls.entryFor(sd)
	if err != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lock.State().IsLocked() {
		ls.
			log.
			Debug().
			Str("descriptor", sd.ID()).
			Msg("checkRelease failure")
		return false
	}
	ls.
		log.
		Debug().
		Str("descriptor", sd.ID()).
		Msg("checkRelease success")
	return true
}

// State classifies the lock on the descriptor.
func (ls *SimpleLockService) State(sd Descriptors) (lockstate.LockState, error) {
	e, err := ls.entryFor(sd)
	if err != nil {
		return lockstate.Invalid, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lock.State(), nil
}

// Held returns the IDs of the locks this process currently owns.
func (ls *SimpleLockService) Held() []string {
	var held []string
	for id, e := range ls.entries() {
		e.mu.Lock()
		if e.lock.HasLock() {
			held = append(held, id)
		}
		e.mu.Unlock()
	}
	return held
}

// ReleaseAll releases every lock this process holds. It keeps going after
// a failure and reports all of them.
func (ls *SimpleLockService) ReleaseAll() error {
	var errs []error
	for id, e := range ls.entries() {
		e.mu.Lock()
		if e.lock.HasLock() {
			if _, err := e.lock.Release(); err != nil {
				errs = append(errs, fmt.Errorf("release %s: %w", id, err))
			}
		}
		e.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (ls *SimpleLockService) entries() map[string]*entry {
	ls.lockMap.Mutex.Lock()
	defer ls.lockMap.Mutex.Unlock()

	entries := make(map[string]*entry, len(ls.lockMap.LockMap))
	for id, e := range ls.lockMap.LockMap {
		entries[id] = e
	}
	return entries
}

// entryFor returns the lock of a descriptor, building it on first use.
func (ls *SimpleLockService) entryFor(sd Descriptors) (*entry, error) {
	id := sd.ID()
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDescriptor, id)
	}

	ls.lockMap.Mutex.Lock()
	defer ls.lockMap.Mutex.Unlock()

	if e, ok := ls.lockMap.LockMap[id]; ok {
		return e, nil
	}

	marker := strategy.NewAtomicFile(filepath.Join(ls.dir, id+markerExt), ls.log)
	opts := append([]lock.Option{lock.WithLogger(ls.log)}, ls.opts...)
	l, err := lock.New(marker, ls.probe, opts...)
	if err != nil {
		return nil, err
	}

	e := &entry{lock: l, marker: marker}
	ls.lockMap.LockMap[id] = e
	return e, nil
}

func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.ContainsRune(id, 0)
}

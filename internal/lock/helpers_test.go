package lock

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	selfPID  = 1000
	otherPID = 2000
)

var epoch = time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)

// recorder keeps the order of calls across the fakes of one test.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakeStrategy is an in-memory marker.
type fakeStrategy struct {
	rec *recorder

	invalid   bool
	exists    bool
	pid       int
	hasPID    bool
	createdAt time.Time

	// createFails is the number of upcoming Create calls that report an
	// existing marker; onCreateFail runs after each of them.
	createFails  int
	onCreateFail func()
	createErr    error
	cleanErr     error
	now          func() time.Time
}

func newFakeStrategy(rec *recorder) *fakeStrategy {
	return &fakeStrategy{rec: rec, now: func() time.Time { return epoch }}
}

func (s *fakeStrategy) hold(pid int, createdAt time.Time) *fakeStrategy {
	s.exists, s.pid, s.hasPID, s.createdAt = true, pid, true, createdAt
	return s
}

func (s *fakeStrategy) IsValid() bool {
	s.rec.add("is_valid")
	return !s.invalid
}

func (s *fakeStrategy) Exists() bool {
	s.rec.add("exists")
	return s.exists
}

func (s *fakeStrategy) Create(pid int) (bool, error) {
	s.rec.add("create %d", pid)
	if s.createErr != nil {
		return false, s.createErr
	}
	if s.createFails > 0 {
		s.createFails--
		if s.onCreateFail != nil {
			s.onCreateFail()
		}
		return false, nil
	}
	if s.exists {
		return false, nil
	}
	s.hold(pid, s.now())
	return true, nil
}

func (s *fakeStrategy) Clean() error {
	s.rec.add("clean")
	if s.cleanErr != nil {
		return s.cleanErr
	}
	s.exists, s.pid, s.hasPID, s.createdAt = false, 0, false, time.Time{}
	s.invalid = false
	return nil
}

func (s *fakeStrategy) ReadPID() (int, bool) {
	s.rec.add("read_pid")
	return s.pid, s.hasPID
}

func (s *fakeStrategy) CreatedAt() time.Time {
	s.rec.add("created_at")
	return s.createdAt
}

// fakeProbe reports the processes in alive as running.
type fakeProbe struct {
	rec          *recorder
	alive        map[int]bool
	terminateErr error
}

func newFakeProbe(rec *recorder, alive ...int) *fakeProbe {
	p := &fakeProbe{rec: rec, alive: make(map[int]bool)}
	for _, pid := range alive {
		p.alive[pid] = true
	}
	return p
}

func (p *fakeProbe) IsAlive(pid int) bool {
	p.rec.add("is_alive %d", pid)
	return p.alive[pid]
}

func (p *fakeProbe) Terminate(pid int) error {
	p.rec.add("terminate %d", pid)
	delete(p.alive, pid)
	return p.terminateErr
}

// fakeDelay records requested pauses without sleeping.
type fakeDelay struct {
	rec    *recorder
	pauses []time.Duration
}

func (d *fakeDelay) sleep(dur time.Duration) {
	d.rec.add("sleep %s", dur)
	d.pauses = append(d.pauses, dur)
}

// fakeGuard is a guard whose availability is scripted per call.
type fakeGuard struct {
	rec      *recorder
	busy     []bool
	tryErr   error
	unlocked int
}

func (g *fakeGuard) TryLock() (bool, error) {
	g.rec.add("guard lock")
	if g.tryErr != nil {
		return false, g.tryErr
	}
	if len(g.busy) > 0 {
		busy := g.busy[0]
		g.busy = g.busy[1:]
		return !busy, nil
	}
	return true, nil
}

func (g *fakeGuard) Unlock() error {
	g.rec.add("guard unlock")
	g.unlocked++
	return nil
}

type fixture struct {
	rec      *recorder
	strategy *fakeStrategy
	probe    *fakeProbe
	delay    *fakeDelay
}

func newFixture() *fixture {
	rec := &recorder{}
	return &fixture{
		rec:      rec,
		strategy: newFakeStrategy(rec),
		probe:    newFakeProbe(rec, selfPID),
		delay:    &fakeDelay{rec: rec},
	}
}

func (f *fixture) lock(t *testing.T, opts ...Option) *Lock {
	t.Helper()
	base := []Option{
		WithPID(selfPID),
		WithDelay(f.delay.sleep),
		WithClock(func() time.Time { return epoch }),
	}
	l, err := New(f.strategy, f.probe, append(base, opts...)...)
	require.NoError(t, err)
	return l
}

var errDisk = errors.New("disk on fire")

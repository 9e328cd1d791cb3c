package lock

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied by New.
const (
	DefaultTries     = 3
	DefaultSleeptime = 2 * time.Second
)

// Option configures a Lock during construction.
type Option func(*Config)

// Config holds the parameters of a Lock.
type Config struct {
	// MaxAge is the age after which a marker of a live owner is broken.
	// Zero disables the age check.
	MaxAge time.Duration

	// Tries is the number of attempts Acquire makes to create the marker.
	Tries int

	// Sleeptime is the pause between consecutive attempts.
	Sleeptime time.Duration

	// PID is recorded in markers created by this lock. It defaults to the
	// PID of the current process.
	PID int

	Delay  func(time.Duration)
	Clock  func() time.Time
	Guard  Guard
	Logger zerolog.Logger
}

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() Config {
	return Config{
		Tries:     DefaultTries,
		Sleeptime: DefaultSleeptime,
		PID:       os.Getpid(),
		Delay:     time.Sleep,
		Clock:     time.Now,
		Logger:    zerolog.Nop(),
	}
}

// Validate reports the first out of range parameter.
func (c Config) Validate() error {
	switch {
	case c.MaxAge < 0:
		return fmt.Errorf("%w: max age %s is negative", ErrInvalidConfig, c.MaxAge)
	case c.Tries < 1:
		return fmt.Errorf("%w: tries must be at least 1, got %d", ErrInvalidConfig, c.Tries)
	case c.Sleeptime < 0:
		return fmt.Errorf("%w: sleeptime %s is negative", ErrInvalidConfig, c.Sleeptime)
	case c.PID <= 0:
		return fmt.Errorf("%w: pid must be positive, got %d", ErrInvalidConfig, c.PID)
	case c.Delay == nil:
		return fmt.Errorf("%w: missing delay provider", ErrInvalidConfig)
	case c.Clock == nil:
		return fmt.Errorf("%w: missing clock provider", ErrInvalidConfig)
	}
	return nil
}

// WithMaxAge sets the age after which a live owner's marker is broken.
func WithMaxAge(d time.Duration) Option {
	return func(c *Config) { c.MaxAge = d }
}

// WithTries sets the number of creation attempts.
func WithTries(n int) Option {
	return func(c *Config) { c.Tries = n }
}

// WithSleeptime sets the pause between attempts.
func WithSleeptime(d time.Duration) Option {
	return func(c *Config) { c.Sleeptime = d }
}

// WithPID overrides the PID recorded in markers.
func WithPID(pid int) Option {
	return func(c *Config) { c.PID = pid }
}

// WithDelay replaces time.Sleep between attempts.
func WithDelay(delay func(time.Duration)) Option {
	return func(c *Config) { c.Delay = delay }
}

// WithClock replaces time.Now for the age check. The clock must share the
// wall clock domain of the strategy's creation times.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) { c.Clock = clock }
}

// WithGuard serializes the decision of each attempt across processes. An
// attempt that finds the guard busy is inconclusive; when no attempt
// succeeds Acquire reports the last creation failure if there was one and
// LOCKED otherwise.
func WithGuard(g Guard) Option {
	return func(c *Config) { c.Guard = g }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Config) { c.Logger = log }
}

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SystemBuilders/pidlock/internal/lock"
	"github.com/SystemBuilders/pidlock/internal/probe"
	"github.com/SystemBuilders/pidlock/internal/strategy"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "pidlock",
		Short:         "inter-process mutual exclusion with PID files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, disabled)")

	root.AddCommand(
		newRunCmd(opts),
		newStatusCmd(opts),
		newServeCmd(opts),
		newRemoteCmd(),
	)
	return root
}

func (o *rootOptions) logger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level), nil
}

// lockFlags are the engine parameters shared by the commands that build
// a lock.
type lockFlags struct {
	maxAge time.Duration
	tries  int
	sleep  time.Duration
	guard  bool
}

func (f *lockFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.maxAge, "max-age", 0, "break locks older than this even if their owner runs (0 disables)")
	cmd.Flags().IntVar(&f.tries, "tries", lock.DefaultTries, "attempts to create the lock")
	cmd.Flags().DurationVar(&f.sleep, "sleep", lock.DefaultSleeptime, "pause between attempts")
	cmd.Flags().BoolVar(&f.guard, "guard", false, "serialize lock decisions with a flock on <file>.guard")
}

func (f *lockFlags) options(log zerolog.Logger) []lock.Option {
	return []lock.Option{
		lock.WithMaxAge(f.maxAge),
		lock.WithTries(f.tries),
		lock.WithSleeptime(f.sleep),
		lock.WithLogger(log),
	}
}

// newFileLock builds a lock over the PID file at path.
func (f *lockFlags) newFileLock(path string, log zerolog.Logger) (*lock.Lock, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	opts := f.options(log)
	if f.guard {
		opts = append(opts, lock.WithGuard(lock.NewFileGuard(path+".guard")))
	}
	return lock.New(strategy.NewAtomicFile(path, log), probe.NewSignal(log), opts...)
}

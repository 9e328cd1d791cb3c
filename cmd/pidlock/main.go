package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/SystemBuilders/pidlock/internal/lock"
	"github.com/SystemBuilders/pidlock/internal/lockservice"
)

// exitLocked is EX_TEMPFAIL from sysexits.h.
const exitLocked = 75

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(handleErr(err))
	}
}

// handleErr reports err and picks the exit status. A child's own exit
// status is passed through untouched.
func handleErr(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}

	fmt.Fprintf(os.Stderr, "pidlock: %v\n", err)
	if errors.Is(err, lock.ErrAlreadyLocked) || errors.Is(err, lockservice.ErrFileAcquired) {
		return exitLocked
	}
	return 1
}

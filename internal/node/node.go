package node

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/SystemBuilders/pidlock/internal/lockservice"
	"github.com/SystemBuilders/pidlock/internal/routing"
)

const shutdownTimeout = 10 * time.Second

// Start serves the lockservice over HTTP until ctx is cancelled. On the way
// out the server is shut down gracefully and every lock the service holds
// is released.
func Start(ctx context.Context, ls *lockservice.SimpleLockService, cfg lockservice.SimpleConfig, log zerolog.Logger) error {
	if err := checkValidPort(cfg.Port()); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.IP(), cfg.Port()))
	if err != nil {
		return err
	}
	return Serve(ctx, ln, ls, log)
}

// Serve is Start on an existing listener.
func Serve(ctx context.Context, ln net.Listener, ls *lockservice.SimpleLockService, log zerolog.Logger) error {
	router := routing.SetupRouting(ls, mux.NewRouter())
	server := &http.Server{
		Handler: router,
	}

	served := make(chan error, 1)
	go func() {
		served <- server.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("starting server")

	select {
	case err := <-served:
		releaseAll(ls, log)
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	if serr := <-served; !errors.Is(serr, http.ErrServerClosed) && err == nil {
		err = serr
	}

	releaseAll(ls, log)
	return err
}

func releaseAll(ls *lockservice.SimpleLockService, log zerolog.Logger) {
	log.Info().Strs("locks", ls.Held()).Msg("releasing held locks")
	if err := ls.ReleaseAll(); err != nil {
		log.Error().Err(err).Msg("could not release held locks")
	}
}

func checkValidPort(port string) error {
	portInt, err := strconv.Atoi(port)
	if err != nil {
		return err
	}
	if portInt < 0 || portInt > 65535 {
		return errors.New("port number exceeds limit of 65535")
	}
	return nil
}

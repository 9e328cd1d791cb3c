package routing

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SystemBuilders/pidlock/internal/lockservice"
)

// SetupRouting adds all the routes on the http server.
func SetupRouting(ls *lockservice.SimpleLockService, r *mux.Router) *mux.Router {
	r.HandleFunc("/acquire", makeAcquireHandler(ls)).Methods(http.MethodPost)
	r.HandleFunc("/checkacquire", makeCheckAcquiredHandler(ls)).Methods(http.MethodPost)
	r.HandleFunc("/release", makeReleaseHandler(ls)).Methods(http.MethodPost)
	r.HandleFunc("/checkrelease", makeCheckReleaseHandler(ls)).Methods(http.MethodPost)
	r.HandleFunc("/state/{id}", makeStateHandler(ls)).Methods(http.MethodGet)
	return r
}

func makeAcquireHandler(ls *lockservice.SimpleLockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acquire(w, r, ls)
	}
}

func makeCheckAcquiredHandler(ls *lockservice.SimpleLockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checkAcquired(w, r, ls)
	}
}

func makeReleaseHandler(ls *lockservice.SimpleLockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		release(w, r, ls)
	}
}

func makeCheckReleaseHandler(ls *lockservice.SimpleLockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checkReleased(w, r, ls)
	}
}

func makeStateHandler(ls *lockservice.SimpleLockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state(w, r, ls)
	}
}

// statusFor maps lockservice errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lockservice.ErrInvalidDescriptor):
		return http.StatusBadRequest
	case errors.Is(err, lockservice.ErrFileAcquired),
		errors.Is(err, lockservice.ErrCantReleaseFile):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

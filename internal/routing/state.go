package routing

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SystemBuilders/pidlock/internal/lockservice"
)

// state reports the classified state of a lock as JSON.
func state(w http.ResponseWriter, r *http.Request, ls *lockservice.SimpleLockService) {
	id := mux.Vars(r)["id"]

	s, err := ls.State(lockservice.NewSimpleDescriptor(id))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	byteData, err := json.Marshal(lockservice.NewStateRes(id, s))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(byteData)
}

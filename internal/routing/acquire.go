package routing

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/SystemBuilders/pidlock/internal/lockservice"
)

// acquire wraps the lock Acquire function and creates a clean HTTP service.
func acquire(w http.ResponseWriter, r *http.Request, ls *lockservice.SimpleLockService) {

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req lockservice.LockRequest
	err = json.Unmarshal(body, &req)

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	desc := lockservice.NewSimpleDescriptor(req.FileID)
	err = ls.Acquire(desc)

	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Write([]byte("lock acquired"))
}

func checkAcquired(w http.ResponseWriter, r *http.Request, ls *lockservice.SimpleLockService) {

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req lockservice.LockCheckRequest
	err = json.Unmarshal(body, &req)

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	desc := lockservice.NewSimpleDescriptor(req.FileID)

	owner, ok := ls.CheckAcquired(desc)
	if ok {
		byteData, err := json.Marshal(lockservice.CheckAcquireRes{Owner: owner})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(byteData)
		return
	}
	http.Error(w, lockservice.ErrCheckAcquireFailure.Error(), http.StatusNotFound)
}

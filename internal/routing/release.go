package routing

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/SystemBuilders/pidlock/internal/lockservice"
)

func release(w http.ResponseWriter, r *http.Request, ls *lockservice.SimpleLockService) {

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

	err = ls.Release(lockservice.NewSimpleDescriptor(req.FileID))

	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Write([]byte("lock released"))
}

func checkReleased(w http.ResponseWriter, r *http.Request, ls *lockservice.SimpleLockService) {

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

	if ls.CheckReleased(lockservice.NewSimpleDescriptor(req.FileID)) {
		w.Write([]byte("checkRelease success"))
		return
	}
	w.Write([]byte("checkRelease failure"))

}

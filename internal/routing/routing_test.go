package routing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SystemBuilders/pidlock/internal/lock"
	"github.com/SystemBuilders/pidlock/internal/lockservice"
	"github.com/SystemBuilders/pidlock/internal/lockstate"
)

const (
	servicePID = 4000
	foreignPID = 5000
)

type alivePIDs map[int]bool

func (a alivePIDs) IsAlive(pid int) bool    { return a[pid] }
func (a alivePIDs) Terminate(pid int) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	probe := alivePIDs{servicePID: true, foreignPID: true}
	ls := lockservice.NewSimpleLockService(zerolog.Nop(), dir, probe, lock.WithPID(servicePID), lock.WithTries(1))

	srv := httptest.NewServer(SetupRouting(ls, mux.NewRouter()))
	t.Cleanup(srv.Close)
	return srv, dir
}

func post(t *testing.T, srv *httptest.Server, path, fileID string) (int, string) {
	t.Helper()
	body := `{"FileID":` + strconv.Quote(fileID) + `}`
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, strings.TrimSpace(string(data))
}

func TestAcquireRelease(t *testing.T) {
	srv, _ := newTestServer(t)

	code, body := post(t, srv, "/acquire", "test")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "lock acquired", body)

	code, body = post(t, srv, "/checkacquire", "test")
	require.Equal(t, http.StatusOK, code)
	var res lockservice.CheckAcquireRes
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.Equal(t, strconv.Itoa(servicePID), res.Owner)

	_, body = post(t, srv, "/checkrelease", "test")
	assert.Equal(t, "checkRelease failure", body)

	code, body = post(t, srv, "/release", "test")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "lock released", body)

	_, body = post(t, srv, "/checkrelease", "test")
	assert.Equal(t, "checkRelease success", body)

	code, _ = post(t, srv, "/checkacquire", "test")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = post(t, srv, "/release", "test")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, lockservice.ErrCantReleaseFile.Error(), body)
}

func TestAcquireConflict(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "busy.pid"), []byte(strconv.Itoa(foreignPID)+"\n"), 0o644))

	code, body := post(t, srv, "/acquire", "busy")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, lockservice.ErrFileAcquired.Error(), body)
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/acquire", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	code, _ := post(t, srv, "/acquire", "a/b")
	assert.Equal(t, http.StatusBadRequest, code)

	resp, err = http.Get(srv.URL + "/acquire")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestState(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "busy.pid"), []byte(strconv.Itoa(foreignPID)+"\n"), 0o644))

	tests := []struct {
		id   string
		want lockstate.LockState
	}{
		{"busy", lockstate.Locked},
		{"free", lockstate.Unlocked},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/state/" + tt.id)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var res lockservice.StateRes
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			assert.Equal(t, lockservice.NewStateRes(tt.id, tt.want), res)
		})
	}
}

package lockclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SystemBuilders/pidlock/internal/lockservice"
	"github.com/SystemBuilders/pidlock/internal/lockstate"
)

const defaultTimeout = 30 * time.Second

var _ Client = (*SimpleClient)(nil)

// SimpleClient implements Client over the node's HTTP API.
type SimpleClient struct {
	baseURL string
	http    *http.Client
}

// NewSimpleClient returns a client for the node described by cfg. The IP
// may carry a scheme; plain http is assumed otherwise.
func NewSimpleClient(cfg Config) *SimpleClient {
	host := cfg.IP()
	scheme := "http"
	if i := strings.Index(host, "://"); i >= 0 {
		scheme, host = host[:i], host[i+3:]
	}
	return &SimpleClient{
		baseURL: scheme + "://" + net.JoinHostPort(host, cfg.Port()),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Acquire makes a HTTP call to the node and acquires the lock.
func (sc *SimpleClient) Acquire(d lockservice.Descriptors) error {
	status, body, err := sc.post("/acquire", lockservice.LockRequest{FileID: d.ID()})
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return lockservice.ErrFileAcquired
	}
	return responseError(status, body)
}

// Release makes a HTTP call to the node and releases the lock.
func (sc *SimpleClient) Release(d lockservice.Descriptors) error {
	status, body, err := sc.post("/release", lockservice.LockRequest{FileID: d.ID()})
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return lockservice.ErrCantReleaseFile
	}
	return responseError(status, body)
}

// CheckAcquired asks the node for the owner of the lock.
func (sc *SimpleClient) CheckAcquired(d lockservice.Descriptors) (string, bool, error) {
	status, body, err := sc.post("/checkacquire", lockservice.LockCheckRequest{FileID: d.ID()})
	if err != nil {
		return "", false, err
	}
	switch status {
	case http.StatusOK:
		var res lockservice.CheckAcquireRes
		if err := json.Unmarshal(body, &res); err != nil {
			return "", false, err
		}
		return res.Owner, true, nil
	case http.StatusNotFound:
		return "", false, nil
	}
	return "", false, responseError(status, body)
}

// State asks the node to classify the lock.
func (sc *SimpleClient) State(d lockservice.Descriptors) (lockstate.LockState, error) {
	resp, err := sc.http.Get(sc.baseURL + "/state/" + url.PathEscape(d.ID()))
	if err != nil {
		return lockstate.Invalid, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return lockstate.Invalid, err
	}
	if resp.StatusCode != http.StatusOK {
		return lockstate.Invalid, responseError(resp.StatusCode, body)
	}

	var res lockservice.StateRes
	if err := json.Unmarshal(body, &res); err != nil {
		return lockstate.Invalid, err
	}
	return res.State, nil
}

func (sc *SimpleClient) post(path string, req interface{}) (int, []byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, nil, err
	}

	resp, err := sc.http.Post(sc.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func responseError(status int, body []byte) error {
	return &ResponseError{Status: status, Body: strings.TrimSpace(string(body))}
}

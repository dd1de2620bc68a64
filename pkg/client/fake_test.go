package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/coder/quartz"

	"github.com/naveenspark/eversense/pkg/domain"
)

// fakeAPI serves the token endpoint and the care API from one httptest server.
type fakeAPI struct {
	srv    *httptest.Server
	logins atomic.Int32

	mu sync.Mutex
	// tokenStatus and tokenBody replace the default token response when set.
	tokenStatus int
	tokenBody   map[string]any
	patients    http.HandlerFunc
	glucose     http.HandlerFunc
}

func (f *fakeAPI) setToken(status int, body map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenStatus = status
	f.tokenBody = body
}

func (f *fakeAPI) setPatients(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patients = h
}

func (f *fakeAPI) setGlucose(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.glucose = h
}

func (f *fakeAPI) snapshot() (int, map[string]any, http.HandlerFunc, http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenStatus, f.tokenBody, f.patients, f.glucose
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		status, body, _, _ := f.snapshot()
		w.Header().Set("Content-Type", "application/json")
		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"}) //nolint:errcheck
			return
		}
		if body == nil {
			body = map[string]any{"access_token": "test-token", "token_type": "Bearer", "expires_in": 43200}
		}
		json.NewEncoder(w).Encode(body) //nolint:errcheck
	})
	mux.HandleFunc(patientListPath, func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		_, _, patients, _ := f.snapshot()
		if patients == nil {
			http.NotFound(w, r)
			return
		}
		patients(w, r)
	})
	mux.HandleFunc(glucosePath, func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		_, _, _, glucose := f.snapshot()
		if glucose == nil {
			http.NotFound(w, r)
			return
		}
		glucose(w, r)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"Message": "Authorization has been denied for this request."}) //nolint:errcheck
		return false
	}
	return true
}

func (f *fakeAPI) options(t *testing.T, clock quartz.Clock) []Option {
	t.Helper()
	return []Option{
		WithTokenURL(f.srv.URL + "/connect/token"),
		WithAPIURL(f.srv.URL),
		WithHTTPClient(f.srv.Client()),
		WithClock(clock),
		WithLogger(slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})),
	}
}

func (f *fakeAPI) newClient(t *testing.T, clock quartz.Clock, opts ...Option) *Client {
	t.Helper()
	return New(domain.NewCredentials("follower@example.com", "secret"), append(f.options(t, clock), opts...)...)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body)) //nolint:errcheck
}

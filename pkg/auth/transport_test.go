package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// apiHarness is a fake backend with a rotating token pair: /api/data
// accepts only the current access token, /api/auth/refresh rotates the pair
// when presented with the current refresh token.
type apiHarness struct {
	mu           sync.Mutex
	access       string
	refresh      string
	nextAccess   string
	nextRefresh  string
	refreshDelay time.Duration
	failRefresh  bool
	failData     bool

	refreshCalls atomic.Int32
	dataCalls    atomic.Int32
}

func (h *apiHarness) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			h.refreshCalls.Add(1)
			if h.refreshDelay > 0 {
				time.Sleep(h.refreshDelay)
			}
			var req struct {
				RefreshToken string `json:"refresh_token"`
			}
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			h.mu.Lock()
			ok := !h.failRefresh && req.RefreshToken == h.refresh
			if ok {
				h.access, h.refresh = h.nextAccess, h.nextRefresh
			}
			access, refresh := h.access, h.refresh
			h.mu.Unlock()
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid token"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"access_token": access, "refresh_token": refresh})
		case "/api/data":
			h.dataCalls.Add(1)
			h.mu.Lock()
			want := "Bearer " + h.access
			reject := h.failData
			h.mu.Unlock()
			if reject || r.Header.Get("Authorization") != want {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"value": "ok"})
		default:
			http.NotFound(w, r)
		}
	})
}

func newHarnessManager(t *testing.T, h *apiHarness) (*Manager, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h.handler())
	t.Cleanup(srv.Close)
	m := NewManager(srv.URL, NewStore(t.TempDir()))
	return m, srv
}

func doData(t *testing.T, m *Manager, srv *httptest.Server) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/data", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := m.Client().Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	return resp
}

func TestTransportAttachesBearer(t *testing.T) {
	h := &apiHarness{access: "t1", refresh: "r1"}
	m, srv := newHarnessManager(t, h)
	m.SetTokens("t1", "r1")

	resp := doData(t, m, srv)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := h.refreshCalls.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0", got)
	}
}

func TestTransportSendsUnauthenticatedWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewManager(srv.URL, NewStore(t.TempDir()))
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/ping", nil)
	resp, err := m.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want unset", gotAuth)
	}
}

func TestTransportRefreshesAndRetriesOn401(t *testing.T) {
	h := &apiHarness{access: "t2", refresh: "r1", nextAccess: "t2", nextRefresh: "r2"}
	m, srv := newHarnessManager(t, h)
	// The session holds a stale access token but a valid refresh token.
	m.SetTokens("t1", "r1")

	resp := doData(t, m, srv)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 after retry", resp.StatusCode)
	}
	if got := h.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := h.dataCalls.Load(); got != 2 {
		t.Errorf("data calls = %d, want 2 (original + retry)", got)
	}
	snap := m.Session().Snapshot()
	if snap.AccessToken != "t2" || snap.RefreshToken != "r2" {
		t.Errorf("session tokens = %q/%q, want t2/r2", snap.AccessToken, snap.RefreshToken)
	}
}

func TestTransportSurfacesSecond401WithoutLooping(t *testing.T) {
	// The refresh succeeds but the new token is still rejected: exactly one
	// refresh, exactly one retry, then the failure surfaces.
	h := &apiHarness{access: "t1", refresh: "r1", nextAccess: "t2", nextRefresh: "r2", failData: true}
	m, srv := newHarnessManager(t, h)
	m.SetTokens("t1", "r1")

	resp := doData(t, m, srv)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 surfaced", resp.StatusCode)
	}
	if got := h.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", got)
	}
	if got := h.dataCalls.Load(); got != 2 {
		t.Errorf("data calls = %d, want exactly 2", got)
	}
}

func TestTransport401WithoutRefreshTokenSurfacesImmediately(t *testing.T) {
	h := &apiHarness{access: "valid", refresh: "r1"}
	m, srv := newHarnessManager(t, h)
	m.SetTokens("stale", "")

	resp := doData(t, m, srv)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if got := h.refreshCalls.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0", got)
	}
}

func TestTransportRefreshFailureSurfacesOriginalResponse(t *testing.T) {
	h := &apiHarness{access: "valid", refresh: "r1", failRefresh: true}
	m, srv := newHarnessManager(t, h)
	m.SetTokens("stale", "r1")

	resp := doData(t, m, srv)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want the original 401", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body) //nolint:errcheck
	if !strings.Contains(string(body), "token expired") {
		t.Errorf("body = %q, want the original error detail", body)
	}
	if got := h.dataCalls.Load(); got != 1 {
		t.Errorf("data calls = %d, want 1 (no retry after failed refresh)", got)
	}
	if m.Session().LoggedIn() {
		t.Error("session still logged in after refresh failure")
	}
}

func TestTransportCoalescesConcurrentRefreshes(t *testing.T) {
	const n = 16
	h := &apiHarness{
		access:       "t2",
		refresh:      "r1",
		nextAccess:   "t2",
		nextRefresh:  "r2",
		refreshDelay: 50 * time.Millisecond,
	}
	m, srv := newHarnessManager(t, h)
	m.SetTokens("t1", "r1")

	// Failures are reported over channels: Fatalf from a spawned goroutine
	// would not stop the test.
	var wg sync.WaitGroup
	wg.Add(n)
	statuses := make(chan int, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/data", nil)
			if err != nil {
				errs <- err
				return
			}
			resp, err := m.Client().Do(req)
			if err != nil {
				errs <- err
				return
			}
			statuses <- resp.StatusCode
			resp.Body.Close() //nolint:errcheck
		}()
	}
	wg.Wait()
	close(statuses)
	close(errs)

	for err := range errs {
		t.Errorf("request error: %v", err)
	}
	for status := range statuses {
		if status != http.StatusOK {
			t.Errorf("request status = %d, want 200", status)
		}
	}
	if got := h.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1 for %d concurrent 401s", got, n)
	}
	snap := m.Session().Snapshot()
	if snap.AccessToken != "t2" || snap.RefreshToken != "r2" {
		t.Errorf("session tokens = %q/%q, want t2/r2", snap.AccessToken, snap.RefreshToken)
	}
}

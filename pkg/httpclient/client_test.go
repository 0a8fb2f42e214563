package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	client, err := New(cfg, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func get(t *testing.T, client *Client, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestNew_ValidConfig(t *testing.T) {
	client := newTestClient(t, DefaultConfig())

	policy := client.Policy()
	if policy.ConnectTimeout != 3000*time.Millisecond {
		t.Errorf("expected connect timeout 3000ms, got %v", policy.ConnectTimeout)
	}
	if policy.ReadTimeout != 3000*time.Millisecond {
		t.Errorf("expected read timeout 3000ms, got %v", policy.ReadTimeout)
	}
	if policy.PoolAcquireTimeout != 3000*time.Millisecond {
		t.Errorf("expected pool acquire timeout 3000ms, got %v", policy.PoolAcquireTimeout)
	}
	if policy.RedirectsEnabled || policy.RelativeRedirectsAllowed {
		t.Errorf("expected redirects disabled, got %+v", policy)
	}

	if client.Pool().MaxTotal() != 20 {
		t.Errorf("expected max total 20, got %d", client.Pool().MaxTotal())
	}
	if client.Pool().MaxPerRoute() != 20 {
		t.Errorf("expected max per route 20, got %d", client.Pool().MaxPerRoute())
	}

	if client.HTTPClient().Timeout != 0 {
		t.Errorf("expected no whole-request timeout, got %v", client.HTTPClient().Timeout)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTotalConnections = 0

	client, err := New(cfg)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestNew_SetsUserAgent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserAgent = "test-client/2.0"
	client := newTestClient(t, cfg)

	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := get(t, client, server.URL)
	resp.Body.Close()

	if receivedUserAgent != "test-client/2.0" {
		t.Errorf("expected User-Agent %q, got %q", "test-client/2.0", receivedUserAgent)
	}
}

// redirectServer serves /start with a redirect to the given location and
// counts hits on /final.
func redirectServer(t *testing.T, absolute bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var finalHits atomic.Int32
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		location := "/final"
		if absolute {
			location = server.URL + "/final"
		}
		http.Redirect(w, r, location, http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		finalHits.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &finalHits
}

func TestRedirectPolicy(t *testing.T) {
	tests := []struct {
		name          string
		follow        bool
		allowRelative bool
		absolute      bool
		wantStatus    int
	}{
		{"disabled relative", false, false, false, http.StatusFound},
		{"disabled absolute", false, false, true, http.StatusFound},
		{"disabled ignores relative allowance", false, true, false, http.StatusFound},
		{"enabled absolute", true, false, true, http.StatusOK},
		{"enabled relative not allowed", true, false, false, http.StatusFound},
		{"enabled relative allowed", true, true, false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, finalHits := redirectServer(t, tt.absolute)

			cfg := DefaultConfig()
			cfg.FollowRedirects = tt.follow
			cfg.AllowRelativeRedirects = tt.allowRelative
			client := newTestClient(t, cfg)

			resp := get(t, client, server.URL+"/start")
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			wantHits := int32(0)
			if tt.wantStatus == http.StatusOK {
				wantHits = 1
			}
			if finalHits.Load() != wantHits {
				t.Errorf("expected %d hits on redirect target, got %d", wantHits, finalHits.Load())
			}
		})
	}
}

func TestNew_ReusesConnections(t *testing.T) {
	var newConns atomic.Int32
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	server.Config.ConnState = func(c net.Conn, state http.ConnState) {
		if state == http.StateNew {
			newConns.Add(1)
		}
	}
	server.Start()
	defer server.Close()

	client := newTestClient(t, DefaultConfig())

	for i := 0; i < 5; i++ {
		resp := get(t, client, server.URL)
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		resp.Body.Close()
	}

	if newConns.Load() != 1 {
		t.Errorf("expected 1 connection to be reused, got %d connections", newConns.Load())
	}
}

func TestNew_ResponseHeaderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.ReadTimeoutMs = 50
	client := newTestClient(t, cfg)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	_, err = client.Do(req)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if client.Pool().Stats().Leased != 0 {
		t.Errorf("expected lease to be returned, got %d leased", client.Pool().Stats().Leased)
	}
}

func TestNew_BoundsConcurrentRequests(t *testing.T) {
	var inflight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		inflight.Add(-1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MaxTotalConnections = 2
	cfg.MaxPerRouteConnections = 2
	client := newTestClient(t, cfg)

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodGet, server.URL, nil)
			if err != nil {
				errs <- err
				return
			}
			resp, err := client.Do(req)
			if err != nil {
				errs <- err
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("request failed: %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent requests, saw %d", peak.Load())
	}
}

func TestNew_PoolExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MaxTotalConnections = 1
	cfg.MaxPerRouteConnections = 1
	cfg.PoolAcquireTimeoutMs = 50
	client := newTestClient(t, cfg)

	held := get(t, client, server.URL)
	defer held.Body.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	_, err = client.Do(req)
	if !errors.Is(err, ErrPoolTimeout) {
		t.Errorf("expected ErrPoolTimeout, got %v", err)
	}
}

func TestClient_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(t, DefaultConfig())
	client.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	_, err = client.Do(req)
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

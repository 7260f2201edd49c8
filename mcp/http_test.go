package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newHTTPServer(t *testing.T, s *Server, opts ...HTTPOption) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(s.Handler(opts...))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/mcp", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func initSession(t *testing.T, srv *httptest.Server, header http.Header) string {
	t.Helper()
	resp := post(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(SessionHeader)
	require.NotEmpty(t, id)
	return id
}

func TestHTTP_SessionFlow(t *testing.T) {
	f := newFixture(t)
	srv := newHTTPServer(t, f.server)

	session := initSession(t, srv, nil)
	assert.True(t, f.server.CheckSession(session))

	resp := post(t, srv, `{"jsonrpc":"2.0","method":"notifications/initialized"}`, http.Header{SessionHeader: {session}})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = post(t, srv,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"perform_any_operation","arguments":{"operation":"list_servers","args":{"environment_id":9}}}}`,
		http.Header{SessionHeader: {session}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Result ToolCallResult `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Result.IsError)
	assert.JSONEq(t, `{"environment_id":9}`, out.Result.Text())
}

func TestHTTP_UnknownSession(t *testing.T) {
	f := newFixture(t)
	srv := newHTTPServer(t, f.server)

	resp := post(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = post(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, http.Header{SessionHeader: {"nope"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sessionCount(s *Server) int {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return len(s.sessions)
}

func TestHTTP_SessionExpires(t *testing.T) {
	f := newFixture(t, WithSessionTTL(time.Minute))
	clock := newFakeClock()
	f.server.now = clock.Now
	srv := newHTTPServer(t, f.server)

	session := initSession(t, srv, nil)
	clock.Advance(50 * time.Second)
	resp := post(t, srv, `{"jsonrpc":"2.0","id":2,"method":"ping"}`, http.Header{SessionHeader: {session}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Use refreshes the idle timer.
	clock.Advance(50 * time.Second)
	assert.True(t, f.server.CheckSession(session))

	clock.Advance(2 * time.Minute)
	resp = post(t, srv, `{"jsonrpc":"2.0","id":3,"method":"ping"}`, http.Header{SessionHeader: {session}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, sessionCount(f.server))
}

func TestSessions_SweptOnInitialize(t *testing.T) {
	f := newFixture(t, WithSessionTTL(time.Minute))
	clock := newFakeClock()
	f.server.now = clock.Now

	for range 10 {
		f.server.createSession()
	}
	clock.Advance(2 * time.Minute)
	fresh := f.server.createSession()
	assert.Equal(t, 1, sessionCount(f.server))
	assert.True(t, f.server.CheckSession(fresh))
}

func TestSessions_CapEvictsLeastRecentlyUsed(t *testing.T) {
	f := newFixture(t, WithMaxSessions(2))
	clock := newFakeClock()
	f.server.now = clock.Now

	first := f.server.createSession()
	clock.Advance(time.Second)
	second := f.server.createSession()
	clock.Advance(time.Second)
	require.True(t, f.server.CheckSession(first))

	clock.Advance(time.Second)
	third := f.server.createSession()
	assert.Equal(t, 2, sessionCount(f.server))
	assert.True(t, f.server.CheckSession(first))
	assert.False(t, f.server.CheckSession(second))
	assert.True(t, f.server.CheckSession(third))
}

func TestHTTP_ParseError(t *testing.T) {
	f := newFixture(t)
	srv := newHTTPServer(t, f.server)

	resp := post(t, srv, `{oops`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeParseError, out.Error.Code)
}

func TestHTTP_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	srv := newHTTPServer(t, f.server)

	resp, err := srv.Client().Get(srv.URL + "/mcp")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTP_Health(t *testing.T) {
	f := newFixture(t)
	srv := newHTTPServer(t, f.server, WithAuthToken("secret"))

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "opsy-test", body["server"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestHTTP_BearerToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"plain", "s3cret"},
		{"bcrypt hash", string(hash)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			srv := newHTTPServer(t, f.server, WithAuthToken(tt.token))

			resp := post(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

			resp = post(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
				http.Header{"Authorization": {"Bearer wrong"}})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			initSession(t, srv, http.Header{"Authorization": {"Bearer s3cret"}})
		})
	}
}

func TestHTTP_Gzip(t *testing.T) {
	f := newFixture(t)
	srv := newHTTPServer(t, f.server)
	session := initSession(t, srv, nil)

	// A large result crosses the compression threshold.
	f.echo.ExecuteFn = nil
	big := bytes.Repeat([]byte("x"), 4096)
	f.echo.Result = map[string]string{"blob": string(big)}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/mcp", bytes.NewBufferString(
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"perform_any_operation","arguments":{"operation":"list_servers","args":{"environment_id":1}}}}`))
	require.NoError(t, err)
	req.Header.Set(SessionHeader, session)
	req.Header.Set("Accept-Encoding", "gzip")

	transport := &http.Transport{DisableCompression: true}
	defer transport.CloseIdleConnections()
	resp, err := (&http.Client{Transport: transport}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Less(t, len(raw), len(big))
}

func TestListenAndServe_Shutdown(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.ListenAndServe(ctx, addr, WithShutdownTimeout(time.Second)) }()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

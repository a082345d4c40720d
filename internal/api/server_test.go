package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackpad/internal/actions"
	"trackpad/internal/input"
	"trackpad/internal/input/inputtest"
	"trackpad/internal/network"
	"trackpad/internal/protocol"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testStatus() protocol.Status {
	return protocol.Status{
		Name:           "studio-pc",
		IP:             "192.168.1.23",
		GesturePort:    4567,
		DiscoveryPort:  4568,
		ActiveSessions: 2,
		Platform:       "windows",
		Version:        "test",
	}
}

func newTestAPI(t *testing.T, cooldown time.Duration) (*Server, *inputtest.Recorder, *httptest.Server) {
	t.Helper()
	rec := inputtest.NewRecorder(input.PlatformWindows)
	d := actions.NewDispatcher(rec, quietLogger())

	s := NewServer("127.0.0.1:0", d, testStatus, WithCooldown(cooldown), WithLogger(quietLogger()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.wsMgr.closeAll()
		ts.Close()
	})
	return s, rec, ts
}

func TestHealth(t *testing.T) {
	_, _, ts := newTestAPI(t, 0)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatus(t *testing.T) {
	_, _, ts := newTestAPI(t, 0)

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var st protocol.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "studio-pc", st.Name)
	assert.Equal(t, 4567, st.GesturePort)
	assert.Equal(t, 2, st.ActiveSessions)
	assert.Zero(t, st.WebSocketClients)
}

func TestStatusRejectsPost(t *testing.T) {
	_, _, ts := newTestAPI(t, 0)

	resp, err := http.Post(ts.URL+"/api/status", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func dialWS(t *testing.T, ts *httptest.Server) *network.Client {
	t.Helper()
	addr := strings.TrimPrefix(ts.URL, "http://")
	c, err := network.Dial(context.Background(), network.TransportWebSocket, addr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestWebSocketGestureStream(t *testing.T) {
	s, rec, ts := newTestAPI(t, 0)
	c := dialWS(t, ts)

	require.Eventually(t, func() bool { return s.WebSocketClients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.SendRaw("garbage"))
	require.NoError(t, c.Send(protocol.TokenZoomIn))
	require.NoError(t, c.Send(protocol.TokenScrollLeft))

	call, ok := rec.Next(time.Second)
	require.True(t, ok)
	assert.Equal(t, inputtest.KeyCombo(input.ModControl, input.KeyPlus), call)

	call, ok = rec.Next(time.Second)
	require.True(t, ok)
	assert.Equal(t, inputtest.Scroll(input.AxisHorizontal, -1), call)
}

func TestWebSocketCooldown(t *testing.T) {
	_, rec, ts := newTestAPI(t, time.Hour)
	c := dialWS(t, ts)

	require.NoError(t, c.Send(protocol.TokenPinchOut))
	require.NoError(t, c.Send(protocol.TokenPinchOut))

	_, ok := rec.Next(time.Second)
	require.True(t, ok)
	_, extra := rec.Next(100 * time.Millisecond)
	assert.False(t, extra)
}

func TestWebSocketClientCount(t *testing.T) {
	s, _, ts := newTestAPI(t, 0)

	a := dialWS(t, ts)
	dialWS(t, ts)
	require.Eventually(t, func() bool { return s.WebSocketClients() == 2 }, time.Second, 5*time.Millisecond)

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	var st protocol.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	resp.Body.Close()
	assert.Equal(t, 2, st.WebSocketClients)

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return s.WebSocketClients() == 1 }, time.Second, 5*time.Millisecond)
}

func TestServeStopsWithContext(t *testing.T) {
	rec := inputtest.NewRecorder(input.PlatformWindows)
	s := NewServer("127.0.0.1:0", actions.NewDispatcher(rec, quietLogger()), testStatus, WithLogger(quietLogger()))
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	resp, err := http.Get("http://" + s.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	c, err := network.Dial(context.Background(), network.TransportWebSocket, s.Addr().String())
	require.NoError(t, err)
	defer c.Close()
	require.Eventually(t, func() bool { return s.WebSocketClients() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Zero(t, s.WebSocketClients())
	assert.Nil(t, s.Addr())
}

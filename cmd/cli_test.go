package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackpad/internal/actions"
	"trackpad/internal/config"
	"trackpad/internal/input"
	"trackpad/internal/input/inputtest"
	"trackpad/internal/network"
	"trackpad/internal/protocol"
	"trackpad/internal/server"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// freeUDPPort returns a port that was free a moment ago.
func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

func startGestureServer(t *testing.T) (*server.Server, *inputtest.Recorder) {
	t.Helper()
	rec := inputtest.NewRecorder(input.PlatformWindows)
	srv := server.New("127.0.0.1:0", actions.NewDispatcher(rec, quietLogger()),
		server.WithCooldown(0), server.WithLogger(quietLogger()))
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, rec
}

func startBeacon(t *testing.T, name string, gesturePort, discoveryPort int) {
	t.Helper()
	target := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: discoveryPort}
	b := network.NewBeacon(name, gesturePort, target,
		network.WithInterval(20*time.Millisecond),
		network.WithLocalIP(func() string { return "127.0.0.1" }),
		network.WithLogger(quietLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", stdout)
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := executeCLI(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestRootOptionsConfig(t *testing.T) {
	opts := &rootOptions{noAPI: true, noTray: true, noFirewall: true, idleTimeout: time.Minute}
	cfg, err := opts.config()
	require.NoError(t, err)

	assert.False(t, cfg.APIEnabled)
	assert.False(t, cfg.TrayEnabled)
	assert.False(t, cfg.FirewallRule)
	assert.Equal(t, time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 4567, cfg.GesturePort)
}

func TestSendRejectsUnknownGesture(t *testing.T) {
	_, _, err := executeCLI(t, "send", "--addr", "127.0.0.1:1", "wave")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown gesture "wave"`)
	assert.Contains(t, err.Error(), "zoom-in")
}

func TestSendOverWebSocketNeedsAddr(t *testing.T) {
	_, _, err := executeCLI(t, "send", "--ws", "zoom-in")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ws needs --addr")
}

func TestSendOverTCP(t *testing.T) {
	srv, rec := startGestureServer(t)

	_, _, err := executeCLI(t, "send", "--addr", srv.Addr().String(), "--gap", "30ms", "zoom-in", "scroll_up")
	require.NoError(t, err)

	call, ok := rec.Next(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, inputtest.KeyCombo(input.ModControl, input.KeyPlus), call)

	call, ok = rec.Next(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, inputtest.Scroll(input.AxisVertical, 1), call)
}

func TestSendDiscoversServer(t *testing.T) {
	srv, rec := startGestureServer(t)
	discoveryPort := freeUDPPort(t)
	startBeacon(t, "desk", srv.Addr().(*net.TCPAddr).Port, discoveryPort)

	_, stderr, err := executeCLI(t, "send",
		"--discovery-port", strconv.Itoa(discoveryPort),
		"--discover-timeout", "2s",
		"pinch-in",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "using desk at 127.0.0.1:")

	call, ok := rec.Next(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, inputtest.KeyCombo(0, input.KeyEscape), call)
}

func TestDiscoverJSON(t *testing.T) {
	discoveryPort := freeUDPPort(t)
	startBeacon(t, "studio", 4567, discoveryPort)

	stdout, _, err := executeCLI(t, "discover",
		"--port", strconv.Itoa(discoveryPort),
		"--duration", "300ms",
		"--json",
	)
	require.NoError(t, err)

	var hosts []network.DiscoveredHost
	require.NoError(t, json.Unmarshal([]byte(stdout), &hosts))
	require.Len(t, hosts, 1)
	assert.Equal(t, "studio", hosts[0].Name)
	assert.Equal(t, "127.0.0.1", hosts[0].IP)
	assert.Equal(t, 4567, hosts[0].Port)
}

func TestDiscoverNothing(t *testing.T) {
	stdout, _, err := executeCLI(t, "discover",
		"--port", strconv.Itoa(freeUDPPort(t)),
		"--duration", "50ms",
	)
	require.NoError(t, err)
	assert.Equal(t, "no servers found\n", stdout)
}

func testServiceConfig(t *testing.T, discoveryPort int) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Name = "service-test"
	cfg.GesturePort = 0
	cfg.APIPort = 0
	cfg.DiscoveryPort = discoveryPort
	cfg.BroadcastAddr = "127.0.0.1"
	cfg.BeaconInterval = 20 * time.Millisecond
	cfg.Cooldown = 0
	cfg.TrayEnabled = false
	cfg.FirewallRule = false
	return cfg
}

func TestServiceEndToEnd(t *testing.T) {
	discoveryPort := freeUDPPort(t)
	cfg := testServiceConfig(t, discoveryPort)

	w := network.NewWatcher(discoveryPort, quietLogger())
	require.NoError(t, w.Listen())

	rec := inputtest.NewRecorder(input.PlatformMacOS)
	svc := newService(cfg, rec, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.start(ctx))
	go w.Run(ctx)
	defer func() {
		cancel()
		svc.wait()
	}()

	// the beacon announces the bound gesture port
	require.Eventually(t, func() bool { return len(w.Hosts()) > 0 }, 2*time.Second, 10*time.Millisecond)
	host := w.Hosts()[0]
	assert.Equal(t, "service-test", host.Name)
	gesturePort := svc.gesture.Addr().(*net.TCPAddr).Port
	assert.Equal(t, gesturePort, host.Port)

	c, err := network.Dial(ctx, network.TransportTCP, net.JoinHostPort("127.0.0.1", strconv.Itoa(gesturePort)))
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Send(protocol.TokenSwipeRight))

	call, ok := rec.Next(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, inputtest.Script(`tell application "System Events" to key code 124 using {control down}`), call)

	apiPort := svc.api.Addr().(*net.TCPAddr).Port
	resp, err := http.Get("http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(apiPort)) + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var st protocol.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "service-test", st.Name)
	assert.Equal(t, gesturePort, st.GesturePort)
	assert.Equal(t, 1, st.ActiveSessions)
	assert.Equal(t, "macos", st.Platform)
	assert.Equal(t, version, st.Version)
}

func TestServiceClientsHook(t *testing.T) {
	cfg := testServiceConfig(t, freeUDPPort(t))
	cfg.APIEnabled = false

	svc := newService(cfg, inputtest.NewRecorder(input.PlatformWindows), quietLogger())
	counts := make(chan int, 4)
	svc.setClientsHook(func(n int) { counts <- n })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.start(ctx))
	defer func() {
		cancel()
		svc.wait()
	}()

	conn, err := net.Dial("tcp", svc.gesture.Addr().String())
	require.NoError(t, err)

	select {
	case n := <-counts:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("hook not called on connect")
	}

	conn.Close()
	select {
	case n := <-counts:
		assert.Zero(t, n)
	case <-time.After(2 * time.Second):
		t.Fatal("hook not called on disconnect")
	}
}

func TestServiceStartFailsWhenPortTaken(t *testing.T) {
	taken, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := testServiceConfig(t, freeUDPPort(t))
	cfg.GesturePort = taken.Addr().(*net.TCPAddr).Port

	svc := newService(cfg, inputtest.NewRecorder(input.PlatformWindows), quietLogger())
	assert.Error(t, svc.start(context.Background()))
}

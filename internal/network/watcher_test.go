package network

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackpad/internal/protocol"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestWatcher() (*Watcher, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	w := NewWatcher(0, quietLogger())
	w.now = clock.Now
	return w, clock
}

func announce(t *testing.T, name, ip string) []byte {
	t.Helper()
	data, err := protocol.EncodeAnnouncement(protocol.Endpoint{Name: name, IP: ip, Port: 4567})
	require.NoError(t, err)
	return data
}

func TestWatcherDeduplicatesByIP(t *testing.T) {
	w, clock := newTestWatcher()

	var discovered []DiscoveredHost
	w.OnDiscover = func(h DiscoveredHost) { discovered = append(discovered, h) }

	isNew, err := w.observe(announce(t, "desk", "192.168.1.10"))
	require.NoError(t, err)
	assert.True(t, isNew)

	clock.Advance(2 * time.Second)
	isNew, err = w.observe(announce(t, "desk-renamed", "192.168.1.10"))
	require.NoError(t, err)
	assert.False(t, isNew)

	hosts := w.Hosts()
	require.Len(t, hosts, 1)
	assert.Equal(t, "desk-renamed", hosts[0].Name)
	assert.Equal(t, clock.Now(), hosts[0].LastSeen)

	require.Len(t, discovered, 1)
	assert.Equal(t, "desk", discovered[0].Name)
}

func TestWatcherDropsMalformed(t *testing.T) {
	w, _ := newTestWatcher()

	for _, data := range [][]byte{
		[]byte("not json"),
		[]byte(`{"name":"x","ip":"fe80::1","port":4567}`),
		[]byte(`{"name":"x","ip":"10.0.0.1","port":0}`),
	} {
		_, err := w.observe(data)
		assert.Error(t, err, string(data))
	}
	assert.Empty(t, w.Hosts())
}

func TestWatcherHostsSorted(t *testing.T) {
	w, _ := newTestWatcher()

	for _, a := range []struct{ name, ip string }{
		{"zeta", "10.0.0.1"},
		{"alpha", "10.0.0.9"},
		{"alpha", "10.0.0.3"},
	} {
		_, err := w.observe(announce(t, a.name, a.ip))
		require.NoError(t, err)
	}

	hosts := w.Hosts()
	require.Len(t, hosts, 3)
	assert.Equal(t, "10.0.0.3", hosts[0].IP)
	assert.Equal(t, "10.0.0.9", hosts[1].IP)
	assert.Equal(t, "zeta", hosts[2].Name)
}

func TestWatcherPrune(t *testing.T) {
	w, clock := newTestWatcher()

	_, err := w.observe(announce(t, "old", "10.0.0.1"))
	require.NoError(t, err)
	clock.Advance(10 * time.Second)
	_, err = w.observe(announce(t, "fresh", "10.0.0.2"))
	require.NoError(t, err)

	assert.Equal(t, 1, w.Prune(5*time.Second))

	hosts := w.Hosts()
	require.Len(t, hosts, 1)
	assert.Equal(t, "fresh", hosts[0].Name)
	assert.Zero(t, w.Prune(5*time.Second))
}

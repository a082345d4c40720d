//go:build !windows && !darwin

package tray

import (
	"sync"
)

// Tray is a headless stand-in where no tray is available. Run blocks until
// Stop so callers keep one code path.
type Tray struct {
	onQuit func()

	mu       sync.Mutex
	endpoint string
	clients  int

	stopOnce sync.Once
	quitCh   chan struct{}
}

// New creates a tray. onQuit is never called here.
func New(onQuit func()) *Tray {
	return &Tray{onQuit: onQuit, quitCh: make(chan struct{})}
}

// Supported reports whether a real tray icon is shown on this platform.
func Supported() bool {
	return false
}

// Run blocks until Stop.
func (t *Tray) Run() {
	<-t.quitCh
}

// SetEndpoint records the endpoint.
func (t *Tray) SetEndpoint(endpoint string) {
	t.mu.Lock()
	t.endpoint = endpoint
	t.mu.Unlock()
}

// SetClients records the client count.
func (t *Tray) SetClients(n int) {
	t.mu.Lock()
	t.clients = n
	t.mu.Unlock()
}

// Tooltip returns what a tray would show.
func (t *Tray) Tooltip() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tooltip(t.endpoint, t.clients)
}

// Stop unblocks Run.
func (t *Tray) Stop() {
	t.stopOnce.Do(func() { close(t.quitCh) })
}

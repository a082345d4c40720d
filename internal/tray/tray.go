//go:build windows || darwin

package tray

import (
	"runtime"
	"sync"

	"github.com/getlantern/systray"
)

// Tray manages the system tray icon and menu
type Tray struct {
	onQuit func()

	mu           sync.Mutex
	endpoint     string
	clients      int
	endpointItem *systray.MenuItem
	clientsItem  *systray.MenuItem

	readyCh chan struct{}
	quitCh  chan struct{}
}

// New creates a tray. onQuit runs when the user picks Quit.
func New(onQuit func()) *Tray {
	return &Tray{
		onQuit:  onQuit,
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Supported reports whether a real tray icon is shown on this platform.
func Supported() bool {
	return true
}

// Run starts the tray event loop and blocks until Stop. It must be called
// from the main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	if runtime.GOOS == "windows" {
		systray.SetIcon(iconICO(iconPNG()))
	} else {
		systray.SetIcon(iconPNG())
		systray.SetTitle(Title)
	}

	t.mu.Lock()
	t.endpointItem = systray.AddMenuItem(endpointLabel(t.endpoint), "")
	t.endpointItem.Disable()
	t.clientsItem = systray.AddMenuItem(clientsLabel(t.clients), "")
	t.clientsItem.Disable()
	systray.SetTooltip(tooltip(t.endpoint, t.clients))
	t.mu.Unlock()

	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Stop the gesture server")

	close(t.readyCh)

	go func() {
		select {
		case <-quit.ClickedCh:
			if t.onQuit != nil {
				t.onQuit()
			}
		case <-t.quitCh:
		}
	}()
}

// SetEndpoint updates the endpoint line.
func (t *Tray) SetEndpoint(endpoint string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endpoint = endpoint
	t.refresh()
}

// SetClients updates the connected client count.
func (t *Tray) SetClients(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clients = n
	t.refresh()
}

// refresh must be called with t.mu held.
func (t *Tray) refresh() {
	if t.endpointItem == nil {
		return // menu not built yet
	}
	t.endpointItem.SetTitle(endpointLabel(t.endpoint))
	t.clientsItem.SetTitle(clientsLabel(t.clients))
	systray.SetTooltip(tooltip(t.endpoint, t.clients))
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

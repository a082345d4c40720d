package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"
	"time"

	"trackpad/internal/protocol"
)

// DiscoveredHost is a gesture server seen on the network
type DiscoveredHost struct {
	protocol.Endpoint
	LastSeen time.Time `json:"last_seen"`
}

// Watcher listens for announcements on the discovery port and keeps one
// entry per announcing IP, refreshed on every datagram.
type Watcher struct {
	port   int
	conn   *net.UDPConn
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	hosts map[string]*DiscoveredHost

	// OnDiscover is called the first time an IP announces itself.
	OnDiscover func(DiscoveredHost)
}

// NewWatcher creates a watcher for the given discovery port. Port 0 picks a
// free port, which is only useful in tests.
func NewWatcher(port int, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		port:   port,
		logger: logger.With("component", "watcher"),
		now:    time.Now,
		hosts:  make(map[string]*DiscoveredHost),
	}
}

// Listen binds the discovery socket on all interfaces.
func (w *Watcher) Listen() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: w.port})
	if err != nil {
		return fmt.Errorf("watcher: listen on :%d: %w", w.port, err)
	}
	w.conn = conn
	return nil
}

// LocalAddr returns the bound address, or nil before Listen.
func (w *Watcher) LocalAddr() *net.UDPAddr {
	if w.conn == nil {
		return nil
	}
	return w.conn.LocalAddr().(*net.UDPAddr)
}

// Run reads announcements until ctx is done. Malformed datagrams are dropped.
func (w *Watcher) Run(ctx context.Context) error {
	if w.conn == nil {
		if err := w.Listen(); err != nil {
			return err
		}
	}

	stop := context.AfterFunc(ctx, func() { w.conn.Close() })
	defer stop()

	buf := make([]byte, protocol.MaxAnnouncementSize)
	for {
		n, from, err := w.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			w.logger.Warn("read_failed", "error", err)
			continue
		}
		if _, err := w.observe(buf[:n]); err != nil {
			w.logger.Debug("announcement_dropped",
				"from", from.String(),
				"error", err,
			)
		}
	}
}

// observe records one announcement and reports whether it was new.
func (w *Watcher) observe(data []byte) (bool, error) {
	ep, err := protocol.DecodeAnnouncement(data)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	h, exists := w.hosts[ep.IP]
	if !exists {
		h = &DiscoveredHost{}
		w.hosts[ep.IP] = h
	}
	h.Endpoint = ep
	h.LastSeen = w.now()
	snapshot := *h
	w.mu.Unlock()

	if !exists {
		w.logger.Info("host_discovered",
			"name", ep.Name,
			"address", ep.Address(),
		)
		if w.OnDiscover != nil {
			w.OnDiscover(snapshot)
		}
	}
	return !exists, nil
}

// Hosts returns the known hosts sorted by name then IP.
func (w *Watcher) Hosts() []DiscoveredHost {
	w.mu.RLock()
	out := make([]DiscoveredHost, 0, len(w.hosts))
	for _, h := range w.hosts {
		out = append(out, *h)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].IP < out[j].IP
	})
	return out
}

// Prune removes hosts not heard from within maxAge and returns how many.
func (w *Watcher) Prune(maxAge time.Duration) int {
	cutoff := w.now().Add(-maxAge)

	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for ip, h := range w.hosts {
		if h.LastSeen.Before(cutoff) {
			w.logger.Info("host_expired", "name", h.Name, "ip", ip)
			delete(w.hosts, ip)
			removed++
		}
	}
	return removed
}

package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"trackpad/internal/protocol"
)

// DefaultBeaconInterval is the delay between two announcements.
const DefaultBeaconInterval = 2 * time.Second

// Beacon periodically broadcasts this host's gesture endpoint so clients can
// find it without typing an address. It is fire-and-forget: nothing is
// received and a failed send is retried on the next tick.
type Beacon struct {
	name        string
	gesturePort int
	target      *net.UDPAddr
	interval    time.Duration
	localIP     func() string
	listen      func() (net.PacketConn, error)
	logger      *slog.Logger

	mu       sync.Mutex
	conn     net.PacketConn
	fellBack bool
}

// BeaconOption customizes a Beacon.
type BeaconOption func(*Beacon)

// WithInterval overrides DefaultBeaconInterval.
func WithInterval(d time.Duration) BeaconOption {
	return func(b *Beacon) { b.interval = d }
}

// WithLocalIP overrides how the announced address is resolved.
func WithLocalIP(fn func() string) BeaconOption {
	return func(b *Beacon) { b.localIP = fn }
}

// WithLogger sets the beacon logger.
func WithLogger(l *slog.Logger) BeaconOption {
	return func(b *Beacon) { b.logger = l }
}

// NewBeacon creates a beacon announcing name and gesturePort to target.
func NewBeacon(name string, gesturePort int, target *net.UDPAddr, opts ...BeaconOption) *Beacon {
	b := &Beacon{
		name:        name,
		gesturePort: gesturePort,
		target:      target,
		interval:    DefaultBeaconInterval,
		localIP:     LocalIPv4,
		listen: func() (net.PacketConn, error) {
			return net.ListenUDP("udp4", &net.UDPAddr{})
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "beacon")
	return b
}

// Open binds the sending socket. Go enables SO_BROADCAST on UDP sockets.
// Calling Open on an open beacon is a no-op.
func (b *Beacon) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return nil
	}
	conn, err := b.listen()
	if err != nil {
		return fmt.Errorf("beacon: open socket: %w", err)
	}
	b.conn = conn
	return nil
}

// Endpoint returns what the next announcement will carry.
func (b *Beacon) Endpoint() protocol.Endpoint {
	return protocol.Endpoint{
		Name: b.name,
		IP:   b.localIP(),
		Port: b.gesturePort,
	}
}

// Run announces immediately and then once per interval until ctx is done.
func (b *Beacon) Run(ctx context.Context) error {
	if err := b.Open(); err != nil {
		return err
	}
	defer b.Close()

	b.logger.Info("beacon_started",
		"endpoint", b.Endpoint().String(),
		"target", b.target.String(),
		"interval", b.interval,
	)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		b.announce()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// announce sends one datagram. Errors are logged and otherwise ignored.
func (b *Beacon) announce() error {
	ep := b.Endpoint()
	b.noteFallback(ep.IP)

	data, err := protocol.EncodeAnnouncement(ep)
	if err != nil {
		b.logger.Error("announce_encode_failed", "error", err)
		return err
	}

	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return errors.New("beacon: socket closed")
	}

	if _, err := conn.WriteTo(data, b.target); err != nil {
		b.logger.Warn("announce_failed",
			"target", b.target.String(),
			"error", err,
		)
		return err
	}
	return nil
}

func (b *Beacon) noteFallback(ip string) {
	loopback := ip == LoopbackIPv4
	if loopback && !b.fellBack {
		b.logger.Warn("no_lan_address",
			"ip", ip,
			"note", "announcing loopback, clients on other hosts will not find this server",
		)
	} else if !loopback && b.fellBack {
		b.logger.Info("lan_address_restored", "ip", ip)
	}
	b.fellBack = loopback
}

// Close releases the socket. Run reopens it.
func (b *Beacon) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// Package config holds the runtime settings of the gesture service.
// There is no config file: the values are fixed defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"time"

	"trackpad/internal/protocol"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the service configuration
type Config struct {
	// Name is announced to clients; defaults to the host name
	Name string `json:"name"`

	// GesturePort is the TCP port gesture clients connect to
	GesturePort int `json:"gesture_port"`

	// DiscoveryPort is the UDP port announcements are broadcast to
	DiscoveryPort int `json:"discovery_port"`

	// BroadcastAddr is the destination address of announcements
	BroadcastAddr string `json:"broadcast_addr"`

	// BeaconInterval is the delay between two announcements
	BeaconInterval time.Duration `json:"beacon_interval"`

	// ReadBufferSize bounds a single read on a gesture connection
	ReadBufferSize int `json:"read_buffer_size"`

	// Cooldown is the minimum gap between two gestures dispatched for one client (0 disables)
	Cooldown time.Duration `json:"cooldown"`

	// IdleTimeout closes a connection that sends nothing for this long (0 keeps it open forever)
	IdleTimeout time.Duration `json:"idle_timeout"`

	// APIEnabled enables the HTTP status and WebSocket gesture endpoint
	APIEnabled bool `json:"api_enabled"`

	// APIPort is the port of the HTTP API
	APIPort int `json:"api_port"`

	// TrayEnabled shows the system tray icon where supported
	TrayEnabled bool `json:"tray_enabled"`

	// FirewallRule creates the inbound firewall rule on Windows
	FirewallRule bool `json:"firewall_rule"`
}

// DefaultConfig returns the configuration the service runs with
func DefaultConfig() *Config {
	name, err := os.Hostname()
	if err != nil || name == "" {
		name = "trackpad"
	}

	desktop := runtime.GOOS == "windows" || runtime.GOOS == "darwin"

	return &Config{
		Name:           name,
		GesturePort:    protocol.DefaultGesturePort,
		DiscoveryPort:  protocol.DefaultDiscoveryPort,
		BroadcastAddr:  protocol.BroadcastAddr,
		BeaconInterval: 2 * time.Second,
		ReadBufferSize: 1024,
		Cooldown:       300 * time.Millisecond,
		IdleTimeout:    0,
		APIEnabled:     true,
		APIPort:        4569,
		TrayEnabled:    desktop,
		FirewallRule:   runtime.GOOS == "windows",
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	for _, p := range []struct {
		field string
		port  int
	}{
		{"gesture_port", c.GesturePort},
		{"discovery_port", c.DiscoveryPort},
	} {
		if p.port <= 0 || p.port > 65535 {
			return fmt.Errorf("%w: %s %d out of range", ErrInvalidConfig, p.field, p.port)
		}
	}
	if c.APIEnabled {
		if c.APIPort <= 0 || c.APIPort > 65535 {
			return fmt.Errorf("%w: api_port %d out of range", ErrInvalidConfig, c.APIPort)
		}
		if c.APIPort == c.GesturePort {
			return fmt.Errorf("%w: api_port collides with gesture_port", ErrInvalidConfig)
		}
	}
	if ip := net.ParseIP(c.BroadcastAddr); ip == nil || ip.To4() == nil {
		return fmt.Errorf("%w: broadcast_addr %q is not IPv4", ErrInvalidConfig, c.BroadcastAddr)
	}
	if c.BeaconInterval <= 0 {
		return fmt.Errorf("%w: beacon_interval must be positive", ErrInvalidConfig)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("%w: read_buffer_size must be positive", ErrInvalidConfig)
	}
	if c.Cooldown < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}

// GestureAddr is the TCP listen address on all interfaces
func (c *Config) GestureAddr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.GesturePort))
}

// APIAddr is the HTTP listen address on all interfaces
func (c *Config) APIAddr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.APIPort))
}

// BroadcastTarget is where announcements are sent
func (c *Config) BroadcastTarget() *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP(c.BroadcastAddr).To4(), Port: c.DiscoveryPort}
}

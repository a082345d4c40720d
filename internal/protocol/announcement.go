package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Default ports used by the server and its clients.
const (
	DefaultGesturePort   = 4567
	DefaultDiscoveryPort = 4568
	BroadcastAddr        = "255.255.255.255"
)

// MaxAnnouncementSize bounds the datagram a receiver needs to buffer.
const MaxAnnouncementSize = 1024

var (
	errEmptyIP  = errors.New("announcement: empty ip")
	errBadIP    = errors.New("announcement: ip is not IPv4")
	errBadPort  = errors.New("announcement: port out of range")
	errTooLarge = errors.New("announcement: datagram too large")
)

// Endpoint identifies a gesture server on the LAN.
type Endpoint struct {
	Name string
	IP   string
	Port int
}

// Address returns the "ip:port" a client dials.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s@%s", e.Name, e.Address())
}

// Announcement is the JSON payload of a discovery datagram.
type Announcement struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// NewAnnouncement builds the wire form of an endpoint.
func NewAnnouncement(e Endpoint) Announcement {
	return Announcement{Name: e.Name, IP: e.IP, Port: e.Port}
}

// Endpoint converts the announcement back into an endpoint.
func (a Announcement) Endpoint() Endpoint {
	return Endpoint{Name: a.Name, IP: a.IP, Port: a.Port}
}

// Validate checks the fields a receiver relies on.
func (a Announcement) Validate() error {
	if a.IP == "" {
		return errEmptyIP
	}
	if ip := net.ParseIP(a.IP); ip == nil || ip.To4() == nil {
		return fmt.Errorf("%w: %q", errBadIP, a.IP)
	}
	if a.Port <= 0 || a.Port > 65535 {
		return fmt.Errorf("%w: %d", errBadPort, a.Port)
	}
	return nil
}

// EncodeAnnouncement serializes an endpoint into a discovery datagram.
func EncodeAnnouncement(e Endpoint) ([]byte, error) {
	data, err := json.Marshal(NewAnnouncement(e))
	if err != nil {
		return nil, fmt.Errorf("announcement: marshal: %w", err)
	}
	if len(data) > MaxAnnouncementSize {
		return nil, errTooLarge
	}
	return data, nil
}

// DecodeAnnouncement parses and validates a discovery datagram.
func DecodeAnnouncement(data []byte) (Endpoint, error) {
	if len(data) > MaxAnnouncementSize {
		return Endpoint{}, errTooLarge
	}
	var a Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		return Endpoint{}, fmt.Errorf("announcement: unmarshal: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Endpoint{}, err
	}
	return a.Endpoint(), nil
}

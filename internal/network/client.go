package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trackpad/internal/protocol"
)

// Transport selects how a Client reaches the server.
type Transport string

const (
	// TransportTCP writes newline-terminated tokens on the gesture port.
	TransportTCP Transport = "tcp"
	// TransportWebSocket sends one text message per token to the /ws endpoint of the API.
	TransportWebSocket Transport = "ws"
)

var errUnknownGesture = errors.New("unknown gesture")

const writeTimeout = 5 * time.Second

// Client sends gesture tokens to a server, mirroring what the mobile
// client does. It is safe for concurrent use.
type Client struct {
	transport Transport
	addr      string

	mu  sync.Mutex
	tcp net.Conn
	ws  *websocket.Conn
}

// Dial connects to addr ("host:port") over the given transport.
func Dial(ctx context.Context, transport Transport, addr string) (*Client, error) {
	c := &Client{transport: transport, addr: addr}

	switch transport {
	case TransportTCP:
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		c.tcp = conn

	case TransportWebSocket:
		u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", u.String(), err)
		}
		c.ws = conn

	default:
		return nil, fmt.Errorf("unsupported transport %q", transport)
	}
	return c, nil
}

// Send writes one gesture. Unknown tokens are rejected locally.
func (c *Client) Send(tok protocol.Token) error {
	if !tok.Valid() {
		return errUnknownGesture
	}
	return c.SendRaw(tok.Literal())
}

// SendRaw writes an arbitrary payload as a single write or message.
// The TCP transport appends the newline terminator.
func (c *Client) SendRaw(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	switch {
	case c.tcp != nil:
		c.tcp.SetWriteDeadline(deadline)
		_, err := c.tcp.Write([]byte(text + "\n"))
		return err
	case c.ws != nil:
		c.ws.SetWriteDeadline(deadline)
		return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
	}
	return net.ErrClosed
}

// Addr returns the address the client dialed.
func (c *Client) Addr() string {
	return c.addr
}

// Close ends the connection. For WebSocket a close frame is sent first.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.tcp != nil:
		err := c.tcp.Close()
		c.tcp = nil
		return err
	case c.ws != nil:
		c.ws.SetWriteDeadline(time.Now().Add(time.Second))
		c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err := c.ws.Close()
		c.ws = nil
		return err
	}
	return nil
}

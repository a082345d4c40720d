package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trackpad/internal/server"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins as this is a local network tool
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSManager tracks WebSocket gesture clients. Each client runs the same
// pipeline as a TCP session: one text message is one gesture.
type WSManager struct {
	dispatcher server.Dispatcher
	cooldown   time.Duration
	logger     *slog.Logger

	clientsMu sync.Mutex
	clients   map[*WebSocketClient]struct{}
	wg        sync.WaitGroup
}

// WebSocketClient represents a connected gesture client
type WebSocketClient struct {
	manager *WSManager
	conn    *websocket.Conn
	stream  *server.Stream
	ip      string
	done    chan struct{}
}

func newWSManager(d server.Dispatcher, cooldown time.Duration, logger *slog.Logger) *WSManager {
	return &WSManager{
		dispatcher: d,
		cooldown:   cooldown,
		logger:     logger,
		clients:    make(map[*WebSocketClient]struct{}),
	}
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("ws_upgrade_failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	client := &WebSocketClient{
		manager: m,
		conn:    conn,
		stream:  server.NewStream(m.dispatcher, m.cooldown, m.logger),
		ip:      r.RemoteAddr,
		done:    make(chan struct{}),
	}
	m.register(client)

	m.wg.Add(2)
	go client.writePump()
	go client.readPump()
}

func (m *WSManager) register(c *WebSocketClient) {
	m.clientsMu.Lock()
	m.clients[c] = struct{}{}
	total := len(m.clients)
	m.clientsMu.Unlock()

	c.stream.Logger().Info("ws_client_connected", "remote_addr", c.ip, "clients", total)
}

func (m *WSManager) unregister(c *WebSocketClient) {
	m.clientsMu.Lock()
	_, ok := m.clients[c]
	delete(m.clients, c)
	total := len(m.clients)
	m.clientsMu.Unlock()

	if ok {
		received, dispatched := c.stream.Counts()
		c.stream.Logger().Info("ws_client_disconnected",
			"remote_addr", c.ip,
			"received", received,
			"dispatched", dispatched,
			"clients", total,
		)
	}
}

func (m *WSManager) count() int {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	return len(m.clients)
}

// closeAll disconnects every client and waits for their pumps.
func (m *WSManager) closeAll() {
	m.clientsMu.Lock()
	for c := range m.clients {
		c.conn.Close()
	}
	m.clientsMu.Unlock()
	m.wg.Wait()
}

// readPump feeds text messages to the client's stream in arrival order.
func (c *WebSocketClient) readPump() {
	defer func() {
		if r := recover(); r != nil {
			c.stream.Logger().Error("ws_client_panic", "error", r)
		}
		close(c.done)
		c.manager.unregister(c)
		c.conn.Close()
		c.manager.wg.Done()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.stream.Logger().Debug("ws_read_failed", "error", err)
			}
			return
		}
		// any message proves liveness
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if msgType != websocket.TextMessage {
			continue
		}
		c.stream.Handle(message)
	}
}

// writePump keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.manager.wg.Done()
	}()

	for {
		select {
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"go-type-race/logger"
)

// WSConn is an interface for the WebSocket connection, so tests can swap in
// a fake without any network I/O.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents a single WebSocket connection for one client.
type Connection struct {
	conn     WSConn
	send     chan []byte
	id       string
	username string
	gateway  *Gateway
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048
	idLength       = 16
)

// Upgrader upgrades HTTP requests to WebSocket connections. The race client
// is a browser SPA served from another origin, so all origins are allowed.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// makeID generates an opaque connection identifier.
func makeID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = idCharset[rand.Intn(len(idCharset))]
	}
	return string(b)
}

// resolveUsername picks the display name for a new connection: the handshake
// query parameter wins, then the cookie-session name, then the default rule
// of "user_" plus the first five characters of the connection id.
func resolveUsername(queryName, sessionName, id string) string {
	if queryName != "" {
		return queryName
	}
	if sessionName != "" {
		return sessionName
	}
	return "user_" + id[:5]
}

// ServeWs upgrades the HTTP request, resolves the display name and starts
// the read and write pumps. sessionName is the name stored in the cookie
// session, used when the handshake carries no username query parameter;
// when both are empty the gateway default-naming rule applies.
func (g *Gateway) ServeWs(w http.ResponseWriter, r *http.Request, sessionName string) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		http.Error(w, "Failed to upgrade WebSocket", http.StatusBadRequest)
		return
	}

	id := makeID(idLength)
	username := resolveUsername(r.URL.Query().Get("username"), sessionName, id)

	c := &Connection{
		conn:     wsConn,
		send:     make(chan []byte, 256),
		id:       id,
		username: username,
		gateway:  g,
	}
	logger.Info.Printf("[ServeWs] Connected: remoteAddr=%v, id=%s, username=%q", r.RemoteAddr, id, username)

	g.register(c)

	go c.readPump()
	go c.writePump()
}

// readPump handles inbound messages from the client and dispatches them to
// the gateway. When the read loop exits the connection is cleaned up as an
// ordinary leave.
func (c *Connection) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Warn.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			break
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d", messageType)
			continue
		}

		var evt clientEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		c.gateway.dispatch(c, evt)
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The channel was closed.
				logger.Debug.Printf("[writePump] Send channel closed for %v", c.conn.RemoteAddr())
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}

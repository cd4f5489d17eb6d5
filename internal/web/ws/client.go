package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client is one WebSocket connection to a session
type Client struct {
	id        string
	sessionID model.SessionID
	identity  auth.Identity
	conn      *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(id string, sessionID model.SessionID, identity auth.Identity, conn *websocket.Conn) *Client {
	return &Client{
		id:        id,
		sessionID: sessionID,
		identity:  identity,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}
}

// enqueue queues a message without blocking. It reports false when the
// client is closed or its buffer is full.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the write pump after it flushes what is queued
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump pumps queued messages to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

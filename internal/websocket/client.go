package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between a websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Topic is a user ID, or GlobalTopic to receive everything.
	Topic string

	// Buffered channel of outbound messages. Closed by the hub.
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

// Deliver queues a message without blocking. It reports false if the buffer
// is full or the client has been closed.
func (c *Client) Deliver(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// NewClient creates a client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, topic string) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		Topic: topic,
		Send:  make(chan []byte, 256),
	}
}

// ReadPump reads messages until the connection fails, passing each to handle.
// The feed is server-push only, so most clients send nothing but control frames.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("topic", c.Topic).Msg("Websocket read error")
			}
			return
		}
		if handle != nil {
			handle(c, message)
		}
	}
}

// WritePump forwards messages from Send to the connection and keeps it alive
// with pings. It returns when Send is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Package ws hosts WebSocket connections: it owns the transport resources,
// pumps frames in and out, and reports closure to the orchestrator exactly
// once per connection.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/scrumpoker/server/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// wsConn implements core.Conn over a gorilla websocket. Outbound frames go
// through a buffered channel so a slow reader never blocks a handler.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
	}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

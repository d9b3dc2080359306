package chat

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/solidarity-overthrow/relay/internal/core"
)

// wsConn wraps a websocket connection with a buffered outbound channel.
// TrySend never blocks; a full buffer means the frame is dropped and
// the caller decides what to log.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(ws *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
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

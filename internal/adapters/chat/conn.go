// Package chat is the WebSocket adapter of the relay: handshake, session
// lifecycle and frame io.
package chat

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrBackpressure = errors.New("backpressure")

// WsChatConn pairs the socket with its outbound queue. All frames to a peer
// go through the send channel, so queue order is delivery order.
type WsChatConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newWsChatConn(ws *websocket.Conn) *WsChatConn {
	return &WsChatConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
}

func (c *WsChatConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsChatConn) Close() {
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

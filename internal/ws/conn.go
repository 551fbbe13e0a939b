package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lobbyn/relay/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Largest client message accepted
	maxMessageSize = 64 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Conn wraps a websocket connection with a buffered, non-blocking send path.
// All socket writes happen on the write pump goroutine; gorilla permits only
// one concurrent writer.
type Conn struct {
	id     model.ConnectionID
	socket *websocket.Conn
	logger *slog.Logger

	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
	reason    model.CloseReason
}

// newConn wraps an upgraded socket. The caller must start the write pump.
func newConn(id model.ConnectionID, socket *websocket.Conn, logger *slog.Logger) *Conn {
	socket.SetReadLimit(maxMessageSize)
	return &Conn{
		id:     id,
		socket: socket,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// Send queues a payload for delivery. Never blocks: a full buffer means the
// peer is too slow and the message is dropped with an error.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.closed:
		return model.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return model.ErrSendBufferFull
	}
}

// Close tears the connection down, sending a close frame with the given
// reason. Safe to call multiple times and from any goroutine; only the
// first reason wins.
func (c *Conn) Close(reason model.CloseReason) {
	c.closeOnce.Do(func() {
		c.reason = reason
		close(c.closed)
	})
}

// writePump drains the send buffer to the socket and, on close, writes the
// close frame before dropping the socket. Runs until Close is called or a
// write fails.
func (c *Conn) writePump() {
	defer c.socket.Close()

	for {
		select {
		case payload := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("write failed",
					slog.String("connection_id", string(c.id)),
					slog.String("error", err.Error()))
				return
			}

		case <-c.closed:
			frame := websocket.FormatCloseMessage(c.reason.Code, c.reason.Text)
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage, frame)
			return
		}
	}
}

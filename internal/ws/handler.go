// Package ws binds the relay to its websocket transport: one long-lived
// connection per client, a read loop per connection, and a write pump that
// keeps slow peers from blocking anyone else.
package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lobbyn/relay/internal/model"
	"github.com/lobbyn/relay/internal/registry"
	"github.com/lobbyn/relay/internal/services/handshake"
	"github.com/lobbyn/relay/internal/services/router"
)

// Handler upgrades websocket requests and dispatches per-connection events
// to the handshake until authorization, then to the message router.
type Handler struct {
	registry  *registry.Registry
	handshake *handshake.Service
	router    *router.Service
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewHandler creates the websocket endpoint handler
func NewHandler(reg *registry.Registry, hs *handshake.Service, rt *router.Service, logger *slog.Logger) *Handler {
	return &Handler{
		registry:  reg,
		handshake: hs,
		router:    rt,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Game clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the request and services the connection until it
// closes. Each connection gets a fresh id; ids are never reused.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	id := model.ConnectionID(uuid.NewString())
	conn := newConn(id, socket, h.logger)
	go conn.writePump()

	h.handshake.Open(id, conn)
	h.readLoop(r, id, conn)
}

// readLoop delivers inbound messages strictly in receipt order. Processing
// is synchronous, so a connection is never reentered.
func (h *Handler) readLoop(r *http.Request, id model.ConnectionID, conn *Conn) {
	defer func() {
		// Peer close, timeout and rejection all end here; both calls are
		// idempotent, so whichever ran first wins.
		conn.Close(model.CloseNormal)
		h.registry.Remove(id)
		h.logger.Info("connection closed", slog.String("connection_id", string(id)))
	}()

	for {
		_, data, err := conn.socket.ReadMessage()
		if err != nil {
			return
		}

		snapshot, ok := h.registry.Get(id)
		if !ok {
			// Rejected or timed out while this message was in flight.
			return
		}

		if snapshot.State == model.StateAuthorized {
			h.router.Handle(id, data)
		} else {
			h.handshake.HandleMessage(r.Context(), id, data)
		}
	}
}

// Package ws bridges WebSocket connections onto table sessions: one client
// per connection, pumping decoded frames into the session loop and snapshots
// back out.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/protocol"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Handler upgrades echo requests onto a table session.
type Handler struct {
	manager  *session.Manager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHandler(manager *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The join link travels by QR; same-origin checks would break
			// phones joining from it.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve handles GET /v1/tables/:id/ws.
func (h *Handler) Serve(c echo.Context) error {
	sess, ok := h.manager.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "table not found"})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade already wrote the handshake error
	}

	cl := &client{
		conn:   conn,
		sess:   sess,
		seat:   sess.NewSeat(),
		logger: h.logger.With("table", sess.ID),
	}
	sess.Register(cl.seat)
	go cl.writePump()
	cl.readPump()
	return nil
}

// client is one WebSocket connection bound to a seat.
type client struct {
	conn   *websocket.Conn
	sess   *session.Session
	seat   *session.Seat
	logger *slog.Logger
}

// readPump decodes frames and forwards them to the session loop.
func (c *client) readPump() {
	defer func() {
		c.sess.Unregister(c.seat)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read", "error", err)
			}
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.logger.Warn("ws parse", "error", err)
			continue
		}
		c.sess.Submit(session.Incoming{Seat: c.seat, Env: env})
	}
}

// writePump drains the seat's frame queue onto the wire and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.seat.Frames():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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

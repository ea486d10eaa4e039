package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"saaspulse/internal/config"
	"saaspulse/internal/infrastructure"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from the peer
	maxMessageSize = 512

	sendBuffer = 256
)

// Conn is the part of a WebSocket connection the client pumps use.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	RemoteAddr() net.Addr
}

// Client is a middleman between a WebSocket connection and the hub
type Client struct {
	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	hub    *Hub
	conn   Conn
	send   chan []byte
	logger *slog.Logger

	pongWait   time.Duration
	pingPeriod time.Duration
}

// NewClient creates a client for conn. traceID ties the client's log lines to
// the upgrade request.
func NewClient(hub *Hub, conn Conn, cfg config.WebSocketConfig, traceID string) *Client {
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
	}
	return &Client{
		id:          infrastructure.GenerateTraceID(),
		traceID:     traceID,
		remoteAddr:  addrString(conn.RemoteAddr()),
		connectedAt: time.Now(),
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		logger:      hub.logger,
		pongWait:    cfg.PongWait,
		pingPeriod:  cfg.PingPeriod,
	}
}

// ID returns the client identifier
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context {
	return infrastructure.WithTraceID(context.Background(), c.traceID)
}

// ReadPump drains inbound messages so control frames are processed. The feed
// is one-way; anything a client sends is discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "WebSocket read error",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()))
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logWriteError(err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logWriteError(err)
				return
			}
		}
	}
}

func (c *Client) logWriteError(err error) {
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}
	c.logger.DebugContext(c.context(), "WebSocket write failed",
		slog.String("client_id", c.id),
		slog.String("error", err.Error()))
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

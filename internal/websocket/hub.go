package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"saaspulse/internal/infrastructure"
	"saaspulse/internal/report"
	"saaspulse/pkg/contracts/events"
)

const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts report state
// messages to them. The client set is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	clientCount  atomic.Int64
	messagesSent atomic.Int64
	dropped      atomic.Int64

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	done    chan struct{}
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    metrics,
	}
}

// Start runs the hub loop in a new goroutine. Calling Start on a running hub does nothing.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	h.quit = make(chan struct{})
	h.done = make(chan struct{})
	go h.run(h.quit, h.done)
}

// Stop terminates the hub loop and disconnects every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)
	done := h.done
	h.mu.Unlock()

	<-done
}

func (h *Hub) run(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ctx := context.Background()

	for {
		select {
		case <-quit:
			for client := range h.clients {
				h.remove(ctx, client)
			}
			h.logger.Info("Hub shut down",
				slog.Int64("messages_sent", h.messagesSent.Load()),
				slog.Int64("messages_dropped", h.dropped.Load()))
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.clientCount.Store(int64(len(h.clients)))
			h.metrics.RecordWebSocketClients(ctx, 1)

			h.logger.InfoContext(client.context(), "Client registered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			if data, err := encode(events.MessageTypeConnect, client.traceID, map[string]string{
				"status":    "connected",
				"client_id": client.id,
			}); err == nil {
				h.deliver(client, data)
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(ctx, client)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
			h.logger.Debug("Broadcast delivered",
				slog.Int("client_count", len(h.clients)),
				slog.Int("message_size", len(message)))
		}
	}
}

// deliver queues message for client, disconnecting clients whose buffer is full
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
		h.messagesSent.Add(1)
	default:
		h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
		h.remove(context.Background(), client)
	}
}

func (h *Hub) remove(ctx context.Context, client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.clientCount.Store(int64(len(h.clients)))
	h.metrics.RecordWebSocketClients(ctx, -1)

	h.logger.InfoContext(client.context(), "Client unregistered",
		slog.Int("total_clients", len(h.clients)),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped():
	}
}

func (h *Hub) stopped() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return h.done
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// Broadcast sends msg to every connected client. Messages are dropped when the
// hub falls behind; report generation never waits on WebSocket delivery.
func (h *Hub) Broadcast(msg events.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode websocket message: %w", err)
	}

	select {
	case h.broadcast <- data:
		return nil
	default:
		h.dropped.Add(1)
		h.logger.Warn("Broadcast queue full, message dropped",
			slog.String("type", string(msg.Type)))
		return nil
	}
}

// OnState implements report.Observer
func (h *Hub) OnState(ctx context.Context, ev report.StateEvent) {
	err := h.Broadcast(events.Message{
		Type:      events.MessageTypeReportState,
		Timestamp: time.Now().UTC(),
		TraceID:   infrastructure.GetTraceID(ctx),
		Data: events.ReportState{
			ReportID: ev.ReportID,
			State:    string(ev.State),
			Outcome:  ev.Outcome,
			Reason:   ev.Reason,
			Rows:     ev.Rows,
		},
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to publish report state", slog.String("error", err.Error()))
	}
}

// GetHubMetrics returns counters for the health endpoint
func (h *Hub) GetHubMetrics() map[string]interface{} {
	return map[string]interface{}{
		"active_connections": h.ClientCount(),
		"messages_sent":      h.messagesSent.Load(),
		"messages_dropped":   h.dropped.Load(),
	}
}

func encode(t events.MessageType, traceID string, data interface{}) ([]byte, error) {
	return json.Marshal(events.Message{
		Type:      t,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Data:      data,
	})
}

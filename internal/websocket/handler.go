package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"saaspulse/internal/config"
	apierrors "saaspulse/internal/errors"
	"saaspulse/internal/infrastructure"
)

// Handler upgrades HTTP requests to WebSocket connections and attaches them to a hub
type Handler struct {
	hub          *Hub
	cfg          config.WebSocketConfig
	upgrader     websocket.Upgrader
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler creates a handler. An empty allowedOrigins list accepts
// same-host origins only.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:          hub,
		cfg:          cfg,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "websocket.handler"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
		Error:           h.upgradeError,
	}
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())
	r = r.WithContext(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgradeError has already replied
		h.logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, conn, h.cfg, infrastructure.GetTraceID(ctx))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	err := apierrors.WebSocketUpgradeFailed(status, reason)
	if h.errorHandler == nil {
		http.Error(w, err.Message, status)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
		}
		set[strings.ToLower(o)] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

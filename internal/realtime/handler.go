// AngelaMos | 2026
// handler.go

package realtime

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/config"
)

type Handler struct {
	hub      *Hub
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler serves the fan-out over WebSocket. An empty or "*" origin list
// accepts any origin.
func NewHandler(hub *Hub, cfg config.RealtimeConfig, logger *slog.Logger) *Handler {
	h := &Handler{hub: hub, cfg: cfg, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.Serve)
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(uuid.NewString(), h.hub, conn, h.cfg, h.logger)
	h.hub.Connect(c)

	go c.writePump()
	go c.readPump()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, "*") ||
		slices.Contains(h.cfg.AllowedOrigins, origin)
}

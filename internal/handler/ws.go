package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourorg/talentmatch/internal/notify"
	"github.com/yourorg/talentmatch/internal/security/middleware"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// MatchStreamHandler pushes match events to the authenticated user over a
// WebSocket connection
type MatchStreamHandler struct {
	hub            *notify.Hub
	logger         *slog.Logger
	allowedOrigins []string
}

// NewMatchStreamHandler creates a new match stream handler
func NewMatchStreamHandler(hub *notify.Hub, logger *slog.Logger, allowedOrigins []string) *MatchStreamHandler {
	return &MatchStreamHandler{
		hub:            hub,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *MatchStreamHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no origin
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed || allowed == "*" {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/matches requests
func (h *MatchStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "missing auth", http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	events, cancel := h.hub.Subscribe(claims.UserID)
	defer cancel()

	h.logger.Info("match stream opened",
		slog.String("user_id", claims.UserID),
		slog.String("role", claims.Role),
	)

	// Drain reads so close frames and pongs are processed; the stream is
	// write-only from the client's perspective.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case <-ping.C:
			ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ws.WriteJSON(event); err != nil {
				h.logger.Debug("match stream write failed",
					slog.String("user_id", claims.UserID),
					slog.String("error", err.Error()),
				)
				return
			}
		}
	}
}

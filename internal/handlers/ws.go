package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yukikurage/collab-api/internal/middleware"
	"github.com/yukikurage/collab-api/internal/realtime"
)

// WSHandler upgrades authenticated requests to realtime connections.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func NewWSHandler(hub *realtime.Hub, allowedOrigins []string, log *zap.SugaredLogger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

// WebSocket serves one connection until the client disconnects.
func (h *WSHandler) WebSocket(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "user", user.ID, "error", err)
		return
	}

	realtime.NewClient(conn, h.hub, user.ID, h.log).Run()
}

// originChecker mirrors the CORS policy: an empty list or "*" admits any origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

package handler

import (
	"net/http"
	"strings"

	"github.com/classpulse/classpulse-backend/internal/middleware"
	"github.com/classpulse/classpulse-backend/internal/notification"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// AlertHandler upgrades connections onto the live alert stream.
type AlertHandler struct {
	hub      *notification.Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(hub *notification.Hub, log zerolog.Logger, allowedOrigins []string) *AlertHandler {
	return &AlertHandler{
		hub:      hub,
		log:      log.With().Str("component", "alert_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/alerts
// Upgrades to WebSocket and registers the user for best-effort alerts.
func (h *AlertHandler) Stream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.hub.Register(claims.UserID, conn)
	defer h.hub.Unregister(claims.UserID, conn)

	h.log.Info().Str("user_id", claims.UserID).Msg("Alert stream connected")

	// The stream is push-only; drain client frames until the peer closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Alert stream closed")
			}
			return
		}
	}
}

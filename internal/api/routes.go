package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	ws "github.com/dverbeek/callscribe/internal/websocket"
)

// InitRoutes wires the HTTP surface: a health check and the streaming endpoint.
func InitRoutes(e *echo.Echo, hub *ws.Hub, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"service":  "callscribe",
			"sessions": hub.SessionCount(),
		})
	})

	e.GET("/ws", func(c echo.Context) error {
		return ws.HandleWebSocket(hub, c, logger)
	})
}

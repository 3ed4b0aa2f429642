package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/internal/infrastructure/websocket"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// RealtimeHandlers exposes the websocket endpoint and the read-only
// connection diagnostics used by the admin console.
type RealtimeHandlers struct {
	wsHandler   *websocket.Handler
	broadcaster domain.ProductBroadcaster
	log         logger.Logger
}

func NewRealtimeHandlers(wsHandler *websocket.Handler, broadcaster domain.ProductBroadcaster,
	log logger.Logger) *RealtimeHandlers {
	return &RealtimeHandlers{
		wsHandler:   wsHandler,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (h *RealtimeHandlers) HandleConnection(c echo.Context) error {
	h.wsHandler.HandleConnection(c.Response(), c.Request())
	return nil
}

func (h *RealtimeHandlers) GetConnectionStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.broadcaster.ConnectionStats())
}

package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetcast/internal/pkg/constants"
	httpHandler "github.com/piresc/fleetcast/services/tracking/handler/http"
	wsHandler "github.com/piresc/fleetcast/services/tracking/handler/websocket"
)

// Handler combines the HTTP and WebSocket handlers of the tracking service
type Handler struct {
	vehicleHandler  *httpHandler.VehicleHandler
	trackingHandler *wsHandler.TrackingHandler
}

// NewHandler creates a new combined handler
func NewHandler(
	vehicleHandler *httpHandler.VehicleHandler,
	trackingHandler *wsHandler.TrackingHandler,
) *Handler {
	return &Handler{
		vehicleHandler:  vehicleHandler,
		trackingHandler: trackingHandler,
	}
}

// RegisterRoutes registers all service routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Snapshot query routes
	e.GET("/vehicles", h.vehicleHandler.ListVehicles)
	e.GET("/vehicles/:id", h.vehicleHandler.GetVehicle)

	// Location update socket
	e.GET(constants.PathLocations, h.trackingHandler.HandleLocations)
}

package websocket

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetcast/internal/pkg/constants"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	pkgws "github.com/piresc/fleetcast/internal/pkg/websocket"
	"github.com/piresc/fleetcast/services/tracking"
)

// TrackingHandler serves the location_updates socket
type TrackingHandler struct {
	trackingUC tracking.TrackingUC
	manager    *pkgws.Manager
	cfg        models.TrackingConfig
	baseCtx    context.Context
}

// NewTrackingHandler creates a new WebSocket handler. baseCtx bounds the work done for inbound frames.
func NewTrackingHandler(baseCtx context.Context, trackingUC tracking.TrackingUC, manager *pkgws.Manager, cfg models.TrackingConfig) *TrackingHandler {
	return &TrackingHandler{
		trackingUC: trackingUC,
		manager:    manager,
		cfg:        cfg,
		baseCtx:    baseCtx,
	}
}

// HandleLocations upgrades the request and runs the connection until it closes
func (h *TrackingHandler) HandleLocations(c echo.Context) error {
	return h.manager.HandleConnection(c, h.serve)
}

func (h *TrackingHandler) serve(peer pkgws.Peer, conn *websocket.Conn) error {
	client := NewClient(uuid.NewString(), conn, h.cfg)

	if err := h.trackingUC.Join(client); err != nil {
		logger.Error("Failed to join broadcast group",
			logger.String("conn_id", client.ID()),
			logger.Err(err))
		client.markClosed()
		return nil
	}
	defer h.trackingUC.Leave(client)

	logger.Info("WebSocket client connected",
		logger.String("conn_id", client.ID()),
		logger.String("group", constants.GroupLocationUpdates),
		logger.String("remote_addr", peer.RemoteAddr),
		logger.String("subject", peer.Subject))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		client.writePump()
	}()

	client.readLoop(h.baseCtx, h.trackingUC)

	client.Close()
	wg.Wait()
	client.markClosed()

	logger.Info("WebSocket client disconnected",
		logger.String("conn_id", client.ID()),
		logger.String("reason", client.closeReason()))
	return nil
}

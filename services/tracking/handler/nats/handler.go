package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/nats-io/nats.go"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	natspkg "github.com/piresc/fleetcast/internal/pkg/nats"
	"github.com/piresc/fleetcast/services/tracking"
)

// PeerHandler applies location events published by other instances
type PeerHandler struct {
	trackingUC tracking.TrackingUC
	natsClient *natspkg.Client
	subject    string
	origin     string
	subs       []*nats.Subscription
}

// NewPeerHandler creates a new peer NATS handler. Events stamped with origin are ignored.
func NewPeerHandler(trackingUC tracking.TrackingUC, client *natspkg.Client, subject, origin string) *PeerHandler {
	return &PeerHandler{
		trackingUC: trackingUC,
		natsClient: client,
		subject:    subject,
		origin:     origin,
		subs:       make([]*nats.Subscription, 0),
	}
}

// InitNATSConsumers subscribes to the location update subject
func (h *PeerHandler) InitNATSConsumers() error {
	sub, err := h.natsClient.Subscribe(h.subject, func(msg *nats.Msg) {
		if err := h.handleLocationUpdate(msg.Data); err != nil {
			logger.Warn("Error handling peer location update",
				logger.String("subject", msg.Subject),
				logger.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", h.subject, err)
	}
	h.subs = append(h.subs, sub)

	logger.Info("Subscribed to peer location updates",
		logger.String("subject", h.subject),
		logger.String("origin", h.origin))
	return nil
}

// Close unsubscribes from every subject
func (h *PeerHandler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", logger.String("subject", sub.Subject), logger.Err(err))
		}
	}
	h.subs = h.subs[:0]
}

var errInvalidUTF8 = errors.New("location event is not valid UTF-8")

func (h *PeerHandler) handleLocationUpdate(data []byte) error {
	if !utf8.Valid(data) {
		return errInvalidUTF8
	}

	var event models.LocationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal location event: %w", err)
	}
	if event.Origin == h.origin {
		return nil
	}

	if err := h.trackingUC.ApplyPeer(context.Background(), event); err != nil {
		return fmt.Errorf("failed to apply peer location update: %w", err)
	}
	return nil
}

package mqtt

import (
	"context"
	"errors"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/services/tracking"
	"github.com/piresc/fleetcast/services/tracking/validator"
)

// LocationHandler feeds tracker messages published over MQTT into the tracking use case
type LocationHandler struct {
	trackingUC tracking.TrackingUC
	client     paho.Client
	topic      string
	qos        byte
}

// NewLocationHandler creates a new MQTT location handler
func NewLocationHandler(trackingUC tracking.TrackingUC, client paho.Client, topic string, qos byte) *LocationHandler {
	return &LocationHandler{
		trackingUC: trackingUC,
		client:     client,
		topic:      topic,
		qos:        qos,
	}
}

// Subscribe starts receiving location messages
func (h *LocationHandler) Subscribe() error {
	token := h.client.Subscribe(h.topic, h.qos, h.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", h.topic, err)
	}

	logger.Info("Subscribed to MQTT location topic", logger.String("topic", h.topic))
	return nil
}

// Unsubscribe stops receiving location messages
func (h *LocationHandler) Unsubscribe() {
	token := h.client.Unsubscribe(h.topic)
	token.Wait()
	if err := token.Error(); err != nil {
		logger.Warn("Failed to unsubscribe from MQTT topic",
			logger.String("topic", h.topic),
			logger.Err(err))
	}
}

func (h *LocationHandler) handleMessage(_ paho.Client, msg paho.Message) {
	// there is no reply channel; rejections are only logged
	_, err := h.trackingUC.Ingest(context.Background(), msg.Payload())
	if err == nil {
		return
	}

	if errors.Is(err, validator.ErrMalformedPayload) || errors.Is(err, validator.ErrValidation) {
		logger.Warn("Rejected MQTT location message",
			logger.String("topic", msg.Topic()),
			logger.Err(err))
		return
	}
	logger.Error("Failed to apply MQTT location message",
		logger.String("topic", msg.Topic()),
		logger.Err(err))
}

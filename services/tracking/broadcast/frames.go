package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/piresc/fleetcast/internal/pkg/constants"
	"github.com/piresc/fleetcast/internal/pkg/models"
)

// EncodeConnectionEstablished encodes the opening frame of a new connection
func EncodeConnectionEstablished(vehicles []models.LocationRecord) ([]byte, error) {
	frame, err := json.Marshal(models.ConnectionEstablishedFrame{
		Type:    models.FrameConnectionEstablished,
		Message: constants.MessageConnected,
		Data:    nonNil(vehicles),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", models.FrameConnectionEstablished, err)
	}
	return frame, nil
}

// EncodeBatch encodes the frame pushed after every state change
func EncodeBatch(vehicles []models.LocationRecord) ([]byte, error) {
	frame, err := json.Marshal(models.BatchLocationFrame{
		Type: models.FrameBatchLocationUpdate,
		Data: nonNil(vehicles),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", models.FrameBatchLocationUpdate, err)
	}
	return frame, nil
}

// EncodeError encodes a frame sent only to the offending connection
func EncodeError(message, details string) []byte {
	frame, _ := json.Marshal(models.ErrorFrame{Error: message, Details: details})
	return frame
}

func nonNil(vehicles []models.LocationRecord) []models.LocationRecord {
	if vehicles == nil {
		return []models.LocationRecord{}
	}
	return vehicles
}

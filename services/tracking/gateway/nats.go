package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/piresc/fleetcast/internal/pkg/models"
	natspkg "github.com/piresc/fleetcast/internal/pkg/nats"
)

// TrackingGW publishes accepted records for peers and downstream consumers
type TrackingGW struct {
	client  *natspkg.Client
	subject string
	origin  string
}

// NewTrackingGW creates a new tracking gateway stamping events with origin
func NewTrackingGW(client *natspkg.Client, subject, origin string) *TrackingGW {
	return &TrackingGW{
		client:  client,
		subject: subject,
		origin:  origin,
	}
}

// PublishLocation publishes one accepted record
func (g *TrackingGW) PublishLocation(ctx context.Context, record models.LocationRecord) error {
	data, err := json.Marshal(models.LocationEvent{
		Origin: g.origin,
		Record: record,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal location event: %w", err)
	}

	if err := g.client.Publish(g.subject, data); err != nil {
		return fmt.Errorf("failed to publish location event for %s: %w", record.ID, err)
	}
	return nil
}

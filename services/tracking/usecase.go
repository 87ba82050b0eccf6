package tracking

import (
	"context"

	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/services/tracking/broadcast"
)

// TrackingUC defines the interface for the tracking business logic
type TrackingUC interface {
	// Ingest validates and applies one inbound message. A non-nil reply goes to the sender only.
	Ingest(ctx context.Context, raw []byte) (reply []byte, err error)
	// ApplyPeer applies a record accepted by another instance without re-publishing it
	ApplyPeer(ctx context.Context, event models.LocationEvent) error

	// Subscriber lifecycle
	Join(sub broadcast.Subscriber) error
	Leave(sub broadcast.Subscriber)

	// Read API
	Snapshot(ctx context.Context) models.Snapshot
	GetVehicle(ctx context.Context, id string) (models.LocationRecord, error)
}

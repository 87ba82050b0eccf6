package tracking

import (
	"context"

	"github.com/piresc/fleetcast/internal/pkg/models"
)

// TrackingGW defines the interface for outbound fan-out of accepted records
type TrackingGW interface {
	PublishLocation(ctx context.Context, record models.LocationRecord) error
}

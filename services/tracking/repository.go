package tracking

import (
	"context"

	"github.com/piresc/fleetcast/internal/pkg/models"
)

// SnapshotRepo mirrors the current snapshot for restart recovery
type SnapshotRepo interface {
	// SaveRecord stores record; firstSeen restarts its position at the end of the order
	SaveRecord(ctx context.Context, record models.LocationRecord, firstSeen bool) error
	DeleteRecords(ctx context.Context, ids []string) error
	// LoadRecords returns the mirrored records in first-seen order
	LoadRecords(ctx context.Context) ([]models.LocationRecord, error)
}

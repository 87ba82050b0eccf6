package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/piresc/fleetcast/internal/pkg/constants"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/internal/utils"
	"github.com/piresc/fleetcast/services/tracking"
	"github.com/piresc/fleetcast/services/tracking/broadcast"
	"github.com/piresc/fleetcast/services/tracking/store"
	"github.com/piresc/fleetcast/services/tracking/validator"
)

// TrackingUC implements the tracking.TrackingUC interface
type TrackingUC struct {
	cfg    models.TrackingConfig
	coord  *broadcast.Coordinator
	gw     tracking.TrackingGW
	mirror *mirror
	now    func() time.Time
}

// NewTrackingUC creates a new tracking use case. repo and gw are optional.
func NewTrackingUC(
	cfg models.TrackingConfig,
	st *store.Store,
	reg *broadcast.Registry,
	repo tracking.SnapshotRepo,
	gw tracking.TrackingGW,
) *TrackingUC {
	uc := &TrackingUC{
		cfg: cfg,
		gw:  gw,
		now: models.Now,
	}

	var hooks []broadcast.TransitionHook
	if repo != nil {
		uc.mirror = newMirror(repo, cfg.MirrorBuffer)
		hooks = append(hooks, uc.mirror)
	}
	uc.coord = broadcast.NewCoordinator(st, reg, hooks...)

	return uc
}

// Ingest validates raw, applies it and publishes the record to peers
func (uc *TrackingUC) Ingest(ctx context.Context, raw []byte) ([]byte, error) {
	record, err := validator.Validate(raw, uc.now())
	if err != nil {
		if errors.Is(err, validator.ErrMalformedPayload) {
			return broadcast.EncodeError(constants.ErrorInvalidJSON, validator.Details(err)), err
		}
		if uc.cfg.ReportValidationErrors {
			return broadcast.EncodeError(constants.ErrorValidationFailed, validator.Details(err)), err
		}
		return nil, err
	}

	delta, err := uc.coord.Apply(record)
	if err != nil {
		return nil, fmt.Errorf("failed to apply vehicle %s: %w", record.ID, err)
	}

	logger.Debug("Applied location update",
		logger.String("vehicle_id", record.ID),
		logger.String("geohash", uc.cellOf(record)),
		logger.Uint64("version", delta.Version),
		logger.Bool("created", delta.Created))

	if uc.gw != nil {
		if err := uc.gw.PublishLocation(ctx, record); err != nil {
			logger.Warn("Failed to publish location update",
				logger.String("vehicle_id", record.ID),
				logger.Err(err))
		}
	}

	return nil, nil
}

// ApplyPeer applies a record accepted by another instance
func (uc *TrackingUC) ApplyPeer(ctx context.Context, event models.LocationEvent) error {
	record := event.Record
	if record.ID == "" {
		return fmt.Errorf("%w: peer record from %s has no id", validator.ErrValidation, event.Origin)
	}
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = uc.now()
	}

	delta, err := uc.coord.Apply(record)
	if err != nil {
		return fmt.Errorf("failed to apply peer vehicle %s: %w", record.ID, err)
	}

	logger.Debug("Applied peer location update",
		logger.String("vehicle_id", record.ID),
		logger.String("origin", event.Origin),
		logger.Uint64("version", delta.Version))
	return nil
}

// Join admits a subscriber to the broadcast group
func (uc *TrackingUC) Join(sub broadcast.Subscriber) error {
	return uc.coord.Join(sub)
}

// Leave removes a subscriber from the broadcast group
func (uc *TrackingUC) Leave(sub broadcast.Subscriber) {
	uc.coord.Leave(sub)
}

// Snapshot returns the current snapshot
func (uc *TrackingUC) Snapshot(ctx context.Context) models.Snapshot {
	return uc.coord.Snapshot()
}

// GetVehicle returns the latest record of one vehicle
func (uc *TrackingUC) GetVehicle(ctx context.Context, id string) (models.LocationRecord, error) {
	rec, ok := uc.coord.Get(id)
	if !ok {
		return models.LocationRecord{}, fmt.Errorf("%w: %s", tracking.ErrVehicleNotFound, id)
	}
	return rec, nil
}

// Restore loads the mirrored snapshot into the store
func (uc *TrackingUC) Restore(ctx context.Context) error {
	if uc.mirror == nil {
		return nil
	}

	records, err := uc.mirror.repo.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load mirrored snapshot: %w", err)
	}

	added, err := uc.coord.Restore(records)
	if err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	logger.Info("Restored vehicles from mirror",
		logger.Int("restored", added),
		logger.Int("mirrored", len(records)))
	return nil
}

// EvictStale removes records older than the staleness window
func (uc *TrackingUC) EvictStale() []string {
	if uc.cfg.StalenessWindow <= 0 {
		return nil
	}

	evicted, err := uc.coord.Evict(uc.now().Add(-uc.cfg.StalenessWindow))
	if err != nil {
		logger.Error("Failed to broadcast after eviction", logger.Err(err))
	}
	return evicted
}

// Run drives the mirror worker and the evictor until ctx is done.
// Pending mirror writes are flushed before it returns.
func (uc *TrackingUC) Run(ctx context.Context) {
	var wg sync.WaitGroup

	if uc.mirror != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc.mirror.run(ctx)
		}()
	}

	if uc.cfg.StalenessWindow > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc.runEvictor(ctx)
		}()
	}

	wg.Wait()
}

// CloseSubscribers disconnects every subscriber, used on shutdown
func (uc *TrackingUC) CloseSubscribers() {
	uc.coord.CloseAll()
}

func (uc *TrackingUC) runEvictor(ctx context.Context) {
	ticker := time.NewTicker(uc.cfg.EvictionInterval)
	defer ticker.Stop()

	logger.Info("Starting stale vehicle evictor",
		logger.Duration("window", uc.cfg.StalenessWindow),
		logger.Duration("interval", uc.cfg.EvictionInterval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.EvictStale()
		}
	}
}

func (uc *TrackingUC) cellOf(record models.LocationRecord) string {
	if uc.cfg.GeohashPrecision == 0 {
		return ""
	}
	return utils.EncodeLocation(record.Latitude, record.Longitude, uc.cfg.GeohashPrecision)
}

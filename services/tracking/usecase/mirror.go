package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/services/tracking"
)

const (
	mirrorOpTimeout    = 2 * time.Second
	mirrorDrainTimeout = 5 * time.Second
)

type mirrorOp struct {
	record    *models.LocationRecord
	firstSeen bool
	evicted   []string
}

// mirror copies transitions to the snapshot repository on a single worker,
// in the order the coordinator applied them
type mirror struct {
	repo    tracking.SnapshotRepo
	ops     chan mirrorOp
	dropped atomic.Uint64
}

func newMirror(repo tracking.SnapshotRepo, buffer int) *mirror {
	if buffer < 1 {
		buffer = 1
	}
	return &mirror{
		repo: repo,
		ops:  make(chan mirrorOp, buffer),
	}
}

func (m *mirror) RecordAccepted(record models.LocationRecord, delta models.SnapshotDelta) {
	m.enqueue(mirrorOp{record: &record, firstSeen: delta.Created})
}

func (m *mirror) RecordsEvicted(ids []string) {
	m.enqueue(mirrorOp{evicted: append([]string(nil), ids...)})
}

func (m *mirror) enqueue(op mirrorOp) {
	select {
	case m.ops <- op:
	default:
		n := m.dropped.Add(1)
		logger.Warn("Mirror queue full, dropping write", logger.Uint64("dropped_total", n))
	}
}

func (m *mirror) run(ctx context.Context) {
	for {
		select {
		case op := <-m.ops:
			m.apply(ctx, op)
		case <-ctx.Done():
			m.drain()
			return
		}
	}
}

func (m *mirror) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorDrainTimeout)
	defer cancel()

	for {
		select {
		case op := <-m.ops:
			m.apply(ctx, op)
		default:
			return
		}
	}
}

func (m *mirror) apply(ctx context.Context, op mirrorOp) {
	ctx, cancel := context.WithTimeout(ctx, mirrorOpTimeout)
	defer cancel()

	if op.record != nil {
		if err := m.repo.SaveRecord(ctx, *op.record, op.firstSeen); err != nil {
			logger.Warn("Failed to mirror vehicle",
				logger.String("vehicle_id", op.record.ID),
				logger.Err(err))
		}
		return
	}

	if err := m.repo.DeleteRecords(ctx, op.evicted); err != nil {
		logger.Warn("Failed to remove evicted vehicles from mirror",
			logger.Int("evicted", len(op.evicted)),
			logger.Err(err))
	}
}

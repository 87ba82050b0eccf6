package broadcast

import (
	"fmt"
	"sync"
	"time"

	"github.com/piresc/fleetcast/internal/pkg/constants"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/services/tracking/store"
)

// TransitionHook observes state transitions in the order they are applied.
// It is called with the coordinator lock held and must not block.
type TransitionHook interface {
	RecordAccepted(record models.LocationRecord, delta models.SnapshotDelta)
	RecordsEvicted(ids []string)
}

// Coordinator serializes mutations of the store with pushes to the registry,
// so every member sees the same frames in the same order.
type Coordinator struct {
	mu       sync.Mutex
	store    *store.Store
	registry *Registry
	hooks    []TransitionHook
}

// NewCoordinator creates a coordinator over st and reg
func NewCoordinator(st *store.Store, reg *Registry, hooks ...TransitionHook) *Coordinator {
	return &Coordinator{
		store:    st,
		registry: reg,
		hooks:    hooks,
	}
}

// Apply upserts record and pushes the resulting snapshot to every member
func (c *Coordinator) Apply(record models.LocationRecord) (models.SnapshotDelta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := c.store.Upsert(record)
	for _, h := range c.hooks {
		h.RecordAccepted(record, delta)
	}

	if err := c.broadcastLocked(); err != nil {
		return delta, err
	}
	return delta, nil
}

// Join sends sub its opening snapshot and registers it.
// No broadcast can reach sub before its opening frame.
func (c *Coordinator) Join(sub Subscriber) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.store.Snapshot()
	frame, err := EncodeConnectionEstablished(snap.Vehicles)
	if err != nil {
		return err
	}
	if !sub.Open(frame) {
		return fmt.Errorf("subscriber %s is not connecting", sub.ID())
	}

	c.registry.Register(sub)
	logger.Debug("Subscriber joined",
		logger.String("conn_id", sub.ID()),
		logger.String("group", constants.GroupLocationUpdates),
		logger.Uint64("version", snap.Version),
		logger.Int("subscribers", c.registry.Len()))
	return nil
}

// Leave deregisters sub. Calling it more than once is harmless.
func (c *Coordinator) Leave(sub Subscriber) {
	if c.registry.Deregister(sub.ID()) {
		logger.Debug("Subscriber left",
			logger.String("conn_id", sub.ID()),
			logger.Int("subscribers", c.registry.Len()))
	}
}

// Evict removes records received before cutoff and broadcasts if anything was removed
func (c *Coordinator) Evict(cutoff time.Time) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := c.store.EvictStale(cutoff)
	if len(evicted) == 0 {
		return nil, nil
	}
	for _, h := range c.hooks {
		h.RecordsEvicted(evicted)
	}

	logger.Info("Evicted stale vehicles",
		logger.Int("evicted", len(evicted)),
		logger.Uint64("version", c.store.Version()))

	return evicted, c.broadcastLocked()
}

// Restore appends mirrored records not yet known and broadcasts if any were added.
// Hooks are not called; the records already come from the mirror.
func (c *Coordinator) Restore(records []models.LocationRecord) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := c.store.Restore(records)
	if added == 0 {
		return 0, nil
	}
	return added, c.broadcastLocked()
}

// Snapshot returns the current snapshot
func (c *Coordinator) Snapshot() models.Snapshot {
	return c.store.Snapshot()
}

// Get returns the current record for id
func (c *Coordinator) Get(id string) (models.LocationRecord, bool) {
	return c.store.Get(id)
}

// CloseAll deregisters and closes every member
func (c *Coordinator) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.registry.Members() {
		c.registry.Deregister(sub.ID())
		sub.Close()
	}
}

func (c *Coordinator) broadcastLocked() error {
	snap := c.store.Snapshot()
	frame, err := EncodeBatch(snap.Vehicles)
	if err != nil {
		return err
	}

	for _, sub := range c.registry.Members() {
		if sub.Send(frame) {
			continue
		}
		c.registry.Deregister(sub.ID())
		sub.Close()
		logger.Warn("Dropped subscriber that could not take a frame",
			logger.String("conn_id", sub.ID()),
			logger.String("reason", constants.CloseReasonSlowConsumer),
			logger.Uint64("version", snap.Version))
	}
	return nil
}

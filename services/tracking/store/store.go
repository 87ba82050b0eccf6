// Package store holds the latest known record of every vehicle.
package store

import (
	"sync"
	"time"

	"github.com/piresc/fleetcast/internal/pkg/models"
)

// Store maps vehicle id to its latest record, keeping first-seen order.
// Records are replaced wholesale and never mutated in place.
type Store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]models.LocationRecord
	version uint64
}

// New creates an empty store
func New() *Store {
	return &Store{
		records: make(map[string]models.LocationRecord),
	}
}

// Upsert replaces the record with the same id, or appends it when the id is new
func (s *Store) Upsert(record models.LocationRecord) models.SnapshotDelta {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.records[record.ID]
	if !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = record
	s.version++

	return models.SnapshotDelta{
		Version:   s.version,
		VehicleID: record.ID,
		Created:   !exists,
	}
}

// Snapshot returns an ordered copy of every record
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicles := make([]models.LocationRecord, 0, len(s.order))
	for _, id := range s.order {
		vehicles = append(vehicles, s.records[id])
	}
	return models.Snapshot{Version: s.version, Vehicles: vehicles}
}

// Get returns the record for id
func (s *Store) Get(id string) (models.LocationRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	return rec, ok
}

// Len returns the number of vehicles held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Version returns the number of mutations applied so far
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Restore appends records in the given order, skipping ids already present.
// It returns how many records were added.
func (s *Store) Restore(records []models.LocationRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, exists := s.records[rec.ID]; exists {
			continue
		}
		s.order = append(s.order, rec.ID)
		s.records[rec.ID] = rec
		added++
	}
	if added > 0 {
		s.version++
	}
	return added
}

// EvictStale removes records received before cutoff and returns their ids
func (s *Store) EvictStale(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	kept := s.order[:0]
	for _, id := range s.order {
		if s.records[id].ReceivedAt.Before(cutoff) {
			delete(s.records, id)
			evicted = append(evicted, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	if len(evicted) > 0 {
		s.version++
	}
	return evicted
}

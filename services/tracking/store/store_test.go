package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, lat float64, at time.Time) models.LocationRecord {
	return models.LocationRecord{ID: id, VehicleType: "bike", Latitude: lat, Longitude: 77.5, ReceivedAt: at}
}

func ids(snap models.Snapshot) []string {
	out := make([]string, 0, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		out = append(out, v.ID)
	}
	return out
}

func TestUpsert_ReplaceKeepsPosition(t *testing.T) {
	s := New()
	now := time.Now()

	d1 := s.Upsert(record("v1", 12.9, now))
	d2 := s.Upsert(record("v2", 1, now))
	d3 := s.Upsert(record("v1", 13.0, now))

	assert.True(t, d1.Created)
	assert.True(t, d2.Created)
	assert.False(t, d3.Created)
	assert.Equal(t, uint64(3), d3.Version)
	assert.Equal(t, "v1", d3.VehicleID)

	snap := s.Snapshot()
	assert.Equal(t, []string{"v1", "v2"}, ids(snap))
	assert.Equal(t, 13.0, snap.Vehicles[0].Latitude)
	assert.Equal(t, uint64(3), snap.Version)
	assert.Equal(t, 2, s.Len())
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := New()
	s.Upsert(record("v1", 1, time.Now()))

	snap := s.Snapshot()
	snap.Vehicles[0].Latitude = 99

	rec, ok := s.Get("v1")
	require.True(t, ok)
	assert.Equal(t, float64(1), rec.Latitude)
}

func TestSnapshot_EmptyIsNotNil(t *testing.T) {
	snap := New().Snapshot()

	assert.NotNil(t, snap.Vehicles)
	assert.Empty(t, snap.Vehicles)
	assert.Equal(t, uint64(0), snap.Version)
}

func TestGet_Missing(t *testing.T) {
	_, ok := New().Get("nope")
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	s := New()
	s.Upsert(record("v2", 5, time.Now()))

	added := s.Restore([]models.LocationRecord{
		record("v1", 1, time.Now()),
		record("v2", 2, time.Now()),
		{},
		record("v3", 3, time.Now()),
	})

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"v2", "v1", "v3"}, ids(s.Snapshot()))
	rec, _ := s.Get("v2")
	assert.Equal(t, float64(5), rec.Latitude)
	assert.Equal(t, uint64(2), s.Version())

	assert.Equal(t, 0, s.Restore(nil))
	assert.Equal(t, uint64(2), s.Version())
}

func TestEvictStale(t *testing.T) {
	s := New()
	base := time.Now()
	s.Upsert(record("old1", 1, base.Add(-time.Hour)))
	s.Upsert(record("fresh1", 2, base))
	s.Upsert(record("old2", 3, base.Add(-2*time.Hour)))
	s.Upsert(record("fresh2", 4, base.Add(time.Minute)))

	evicted := s.EvictStale(base.Add(-time.Minute))

	assert.ElementsMatch(t, []string{"old1", "old2"}, evicted)
	assert.Equal(t, []string{"fresh1", "fresh2"}, ids(s.Snapshot()))
	assert.Equal(t, uint64(5), s.Version())
	_, ok := s.Get("old1")
	assert.False(t, ok)

	assert.Empty(t, s.EvictStale(base.Add(-time.Minute)))
	assert.Equal(t, uint64(5), s.Version())
}

func TestUpsert_Concurrent(t *testing.T) {
	s := New()
	const writers, perWriter = 8, 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Upsert(record(fmt.Sprintf("v%d", i%20), float64(w), time.Now()))
				_ = s.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Vehicles, 20)
	assert.Equal(t, uint64(writers*perWriter), snap.Version)

	seen := make(map[string]bool)
	for _, v := range snap.Vehicles {
		assert.False(t, seen[v.ID], "duplicate id %s", v.ID)
		seen[v.ID] = true
	}
}

func TestUpsert_ConcurrentLastWriteWins(t *testing.T) {
	s := New()
	const writers, perWriter = 8, 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Upsert(record(fmt.Sprintf("w%d", w), float64(i), time.Now()))
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, writers, s.Len())
	for w := 0; w < writers; w++ {
		got, ok := s.Get(fmt.Sprintf("w%d", w))
		require.True(t, ok)
		assert.Equal(t, float64(perWriter-1), got.Latitude)
	}
}

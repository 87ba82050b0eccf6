package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/services/tracking/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	id string

	mu      sync.Mutex
	opened  bool
	initial []byte
	frames  [][]byte
	closed  bool
	reject  bool
}

func newFake(id string) *fakeSubscriber { return &fakeSubscriber{id: id} }

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Open(initial []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opened || f.closed {
		return false
	}
	f.opened = true
	f.initial = initial
	return true
}

func (f *fakeSubscriber) Send(frame []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.reject {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSubscriber) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

type recordingHook struct {
	accepted []models.SnapshotDelta
	evicted  [][]string
}

func (h *recordingHook) RecordAccepted(_ models.LocationRecord, delta models.SnapshotDelta) {
	h.accepted = append(h.accepted, delta)
}

func (h *recordingHook) RecordsEvicted(ids []string) {
	h.evicted = append(h.evicted, ids)
}

func rec(id string, lat float64) models.LocationRecord {
	return models.LocationRecord{ID: id, VehicleType: "bike", Latitude: lat, Longitude: 77.5, ReceivedAt: time.Now().UTC()}
}

type decodedFrame struct {
	Type    string                   `json:"type"`
	Message string                   `json:"message"`
	Data    []map[string]interface{} `json:"data"`
}

func decode(t *testing.T, raw []byte) decodedFrame {
	t.Helper()
	var f decodedFrame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, b := newFake("a"), newFake("b")

	r.Register(a)
	r.Register(b)
	r.Register(a)
	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.Members(), 2)

	assert.True(t, r.Deregister("a"))
	assert.False(t, r.Deregister("a"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := newFake(fmt.Sprintf("s%d", i))
			r.Register(sub)
			_ = r.Members()
			r.Deregister(sub.ID())
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}

func TestJoin_SendsSnapshotFirst(t *testing.T) {
	c := NewCoordinator(store.New(), NewRegistry())
	for i := 0; i < 3; i++ {
		_, err := c.Apply(rec(fmt.Sprintf("v%d", i), float64(i)))
		require.NoError(t, err)
	}

	sub := newFake("late")
	require.NoError(t, c.Join(sub))

	opening := decode(t, sub.initial)
	assert.Equal(t, models.FrameConnectionEstablished, opening.Type)
	assert.Equal(t, "You are now connected!", opening.Message)
	require.Len(t, opening.Data, 3)
	assert.Equal(t, "v0", opening.Data[0]["id"])
	assert.Empty(t, sub.received())
}

func TestJoin_EmptyStoreSendsEmptyArray(t *testing.T) {
	c := NewCoordinator(store.New(), NewRegistry())
	sub := newFake("first")

	require.NoError(t, c.Join(sub))

	assert.Contains(t, string(sub.initial), `"data":[]`)
}

func TestJoin_RejectsNonConnecting(t *testing.T) {
	reg := NewRegistry()
	c := NewCoordinator(store.New(), reg)
	sub := newFake("gone")
	sub.Close()

	assert.Error(t, c.Join(sub))
	assert.Equal(t, 0, reg.Len())
}

func TestApply_IdenticalFramesForEveryone(t *testing.T) {
	c := NewCoordinator(store.New(), NewRegistry())
	a, b := newFake("a"), newFake("b")
	require.NoError(t, c.Join(a))
	require.NoError(t, c.Join(b))

	_, err := c.Apply(rec("v1", 12.9))
	require.NoError(t, err)
	_, err = c.Apply(rec("v1", 13.0))
	require.NoError(t, err)

	fa, fb := a.received(), b.received()
	require.Len(t, fa, 2)
	require.Len(t, fb, 2)
	for i := range fa {
		assert.Equal(t, fa[i], fb[i])
	}

	last := decode(t, fa[1])
	assert.Equal(t, models.FrameBatchLocationUpdate, last.Type)
	require.Len(t, last.Data, 1)
	assert.Equal(t, 13.0, last.Data[0]["latitude"])
}

func TestApply_DropsFailingSubscriberOnly(t *testing.T) {
	reg := NewRegistry()
	c := NewCoordinator(store.New(), reg)
	good, slow := newFake("good"), newFake("slow")
	require.NoError(t, c.Join(good))
	require.NoError(t, c.Join(slow))
	slow.reject = true

	_, err := c.Apply(rec("v1", 1))
	require.NoError(t, err)

	assert.Len(t, good.received(), 1)
	assert.True(t, slow.closed)
	assert.Equal(t, 1, reg.Len())

	_, err = c.Apply(rec("v2", 2))
	require.NoError(t, err)
	assert.Len(t, good.received(), 2)
}

func TestApply_CallsHooksInOrder(t *testing.T) {
	hook := &recordingHook{}
	c := NewCoordinator(store.New(), NewRegistry(), hook)

	_, _ = c.Apply(rec("v1", 1))
	_, _ = c.Apply(rec("v2", 1))
	_, _ = c.Apply(rec("v1", 2))

	require.Len(t, hook.accepted, 3)
	assert.True(t, hook.accepted[0].Created)
	assert.False(t, hook.accepted[2].Created)
	assert.Equal(t, uint64(3), hook.accepted[2].Version)
}

func TestApply_ConcurrentOrderIsSharedByAll(t *testing.T) {
	c := NewCoordinator(store.New(), NewRegistry())
	subs := []*fakeSubscriber{newFake("a"), newFake("b"), newFake("c")}
	for _, s := range subs {
		require.NoError(t, c.Join(s))
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_, _ = c.Apply(rec(fmt.Sprintf("v%d", w), float64(i)))
			}
		}(w)
	}
	wg.Wait()

	ref := subs[0].received()
	require.Len(t, ref, 100)
	for _, s := range subs[1:] {
		assert.Equal(t, ref, s.received())
	}

	// each producer's vehicle ends on that producer's last update
	var last struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ref[len(ref)-1], &last))
	require.Len(t, last.Data, 4)
	for _, v := range last.Data {
		assert.Equal(t, 24.0, v["latitude"], "vehicle %v", v["id"])
	}
}

func TestLeave_Idempotent(t *testing.T) {
	reg := NewRegistry()
	c := NewCoordinator(store.New(), reg)
	sub := newFake("a")
	require.NoError(t, c.Join(sub))

	c.Leave(sub)
	c.Leave(sub)

	assert.Equal(t, 0, reg.Len())
	_, err := c.Apply(rec("v1", 1))
	require.NoError(t, err)
	assert.Empty(t, sub.received())
}

func TestEvict(t *testing.T) {
	hook := &recordingHook{}
	st := store.New()
	c := NewCoordinator(st, NewRegistry(), hook)

	old := rec("old", 1)
	old.ReceivedAt = time.Now().Add(-time.Hour)
	_, _ = c.Apply(old)
	_, _ = c.Apply(rec("fresh", 2))

	sub := newFake("a")
	require.NoError(t, c.Join(sub))

	evicted, err := c.Evict(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, [][]string{{"old"}}, hook.evicted)

	frames := sub.received()
	require.Len(t, frames, 1)
	f := decode(t, frames[0])
	require.Len(t, f.Data, 1)
	assert.Equal(t, "fresh", f.Data[0]["id"])

	evicted, err = c.Evict(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, evicted)
	assert.Len(t, sub.received(), 1)
}

func TestCloseAll(t *testing.T) {
	reg := NewRegistry()
	c := NewCoordinator(store.New(), reg)
	a, b := newFake("a"), newFake("b")
	require.NoError(t, c.Join(a))
	require.NoError(t, c.Join(b))

	c.CloseAll()

	assert.Equal(t, 0, reg.Len())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestEncodeError(t *testing.T) {
	assert.JSONEq(t, `{"error":"Invalid JSON format","details":"unexpected end of JSON input"}`,
		string(EncodeError("Invalid JSON format", "unexpected end of JSON input")))
}

func TestRestore_BroadcastsOnlyWhenAdded(t *testing.T) {
	hook := &recordingHook{}
	c := NewCoordinator(store.New(), NewRegistry(), hook)
	sub := newFake("a")
	require.NoError(t, c.Join(sub))

	added, err := c.Restore([]models.LocationRecord{rec("v1", 1), rec("v2", 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Len(t, sub.received(), 1)
	assert.Empty(t, hook.accepted)

	added, err = c.Restore([]models.LocationRecord{rec("v1", 5)})
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Len(t, sub.received(), 1)
}

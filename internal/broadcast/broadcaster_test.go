package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinetra/posestream/internal/domain"
)

const testPollInterval = 5 * time.Millisecond

type testHarness struct {
	queue       *SampleQueue
	registry    *ClientRegistry
	broadcaster *Broadcaster
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	queue := NewSampleQueue()
	registry := NewClientRegistry()
	broadcaster := NewBroadcaster(queue, registry, clockwork.NewRealClock(), testPollInterval)
	t.Cleanup(broadcaster.Stop)
	return &testHarness{queue: queue, registry: registry, broadcaster: broadcaster}
}

// connect registers a fresh client and returns the peer end for reading.
func (h *testHarness) connect(t *testing.T) (uuid.UUID, *ws.Conn) {
	t.Helper()
	server, client := newTestConnPair(t)
	id := uuid.New()
	c := NewClient(id, server, clockwork.NewRealClock(), testWriteTimeout)
	require.NoError(t, h.registry.Add(c))
	return id, client
}

func readSample(t *testing.T, conn *ws.Conn) domain.Sample {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var s domain.Sample
	require.NoError(t, json.Unmarshal(msg, &s))
	return s
}

func TestBroadcaster_DeliversInEnqueueOrder(t *testing.T) {
	h := newTestHarness(t)
	_, conn := h.connect(t)

	const n = 20
	for i := range n {
		h.queue.Enqueue(domain.Sample{Timestamp: float64(i)})
	}

	for i := range n {
		s := readSample(t, conn)
		assert.Equal(t, float64(i), s.Timestamp)
	}
}

func TestBroadcaster_AllClientsReceiveEachSample(t *testing.T) {
	h := newTestHarness(t)
	_, conn1 := h.connect(t)
	_, conn2 := h.connect(t)

	h.queue.Enqueue(domain.Sample{Timestamp: 42})

	for _, conn := range []*ws.Conn{conn1, conn2} {
		s := readSample(t, conn)
		assert.Equal(t, 42.0, s.Timestamp)
	}
}

func TestBroadcaster_LateJoinerGetsNoReplay(t *testing.T) {
	h := newTestHarness(t)
	_, conn1 := h.connect(t)

	h.queue.Enqueue(domain.Sample{Timestamp: 1})
	require.Equal(t, 1.0, readSample(t, conn1).Timestamp)

	// Sample 1 has been drained; a client joining now never sees it
	_, conn2 := h.connect(t)
	h.queue.Enqueue(domain.Sample{Timestamp: 2})

	assert.Equal(t, 2.0, readSample(t, conn1).Timestamp)
	assert.Equal(t, 2.0, readSample(t, conn2).Timestamp)
}

func TestBroadcaster_NoClientsDiscardsBatch(t *testing.T) {
	h := newTestHarness(t)

	h.queue.Enqueue(domain.Sample{Timestamp: 1})
	require.True(t, waitFor(func() bool { return h.queue.Len() == 0 }))

	// A client connecting afterwards starts from the next sample
	_, conn := h.connect(t)
	h.queue.Enqueue(domain.Sample{Timestamp: 2})
	assert.Equal(t, 2.0, readSample(t, conn).Timestamp)
}

func TestBroadcaster_FailedClientEvictedOthersUnaffected(t *testing.T) {
	h := newTestHarness(t)
	_, conn1 := h.connect(t)
	_, conn2 := h.connect(t)
	require.Equal(t, 2, h.registry.Count())

	// Kill client 2's peer; its sends start failing once the write
	// goroutine dies and its buffer fills.
	conn2.Close()

	const n = 64
	go func() {
		for i := range n {
			h.queue.Enqueue(domain.Sample{Timestamp: float64(i)})
			time.Sleep(time.Millisecond)
		}
	}()

	// Client 1 receives the full ordered stream regardless
	for i := range n {
		s := readSample(t, conn1)
		require.Equal(t, float64(i), s.Timestamp)
	}

	assert.True(t, waitFor(func() bool { return h.registry.Count() == 1 }),
		"failed client should be evicted")

	// And keeps receiving after the eviction
	h.queue.Enqueue(domain.Sample{Timestamp: 999})
	assert.Equal(t, 999.0, readSample(t, conn1).Timestamp)
}

func TestBroadcaster_SamplePayloadRoundTrip(t *testing.T) {
	h := newTestHarness(t)
	_, conn := h.connect(t)

	h.queue.Enqueue(domain.Sample{
		Timestamp: 100,
		RightArm: &domain.ArmPose{
			Shoulder: domain.Landmark{X: 0, Y: 0, Z: 0, Visibility: 0.9},
			Wrist:    domain.Landmark{X: 0.1, Y: 0.2, Z: 0.0, Visibility: 0.95},
		},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(msg, &raw))
	assert.Equal(t, 100.0, raw["timestamp"])
	assert.Nil(t, raw["left_arm"])
	rightArm, ok := raw["right_arm"].(map[string]any)
	require.True(t, ok)
	wrist, ok := rightArm["wrist"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.95, wrist["visibility"])
}

func TestBroadcaster_StopClosesClients(t *testing.T) {
	h := newTestHarness(t)
	_, conn := h.connect(t)
	require.Equal(t, 1, h.registry.Count())

	h.broadcaster.Stop()

	assert.Equal(t, 0, h.registry.Count())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var closeErr *ws.CloseError
	if assert.ErrorAs(t, err, &closeErr) {
		assert.Equal(t, ws.CloseNormalClosure, closeErr.Code)
	}
}

func TestBroadcaster_StopIdempotent(t *testing.T) {
	h := newTestHarness(t)
	h.broadcaster.Stop()
	h.broadcaster.Stop()
	h.broadcaster.Stop()
}

func TestBroadcaster_EnqueueAfterStopDoesNotPanic(t *testing.T) {
	h := newTestHarness(t)
	h.broadcaster.Stop()

	h.queue.Enqueue(domain.Sample{Timestamp: 1})
	assert.Equal(t, 1, h.queue.Len())
}

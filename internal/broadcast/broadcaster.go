package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kinetra/posestream/internal/logging"
	"github.com/kinetra/posestream/internal/metrics"
)

const stopTimeout = 10 * time.Second

// Broadcaster drains the sample queue on a fixed poll interval and fans
// each batch out to the current registry snapshot. A failed send evicts
// only that client; the pass and the loop always continue. The loop runs
// for the lifetime of the server.
type Broadcaster struct {
	queue    *SampleQueue
	registry *ClientRegistry
	clock    clockwork.Clock
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewBroadcaster starts the poll loop. interval controls broadcast
// frequency (lower = lower end-to-end latency, more wakeups).
func NewBroadcaster(queue *SampleQueue, registry *ClientRegistry, clock clockwork.Clock, interval time.Duration) *Broadcaster {
	b := &Broadcaster{
		queue:    queue,
		registry: registry,
		clock:    clock,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

// Stop exits the poll loop, closes every registered client and blocks
// until the loop goroutine has finished or stopTimeout is reached.
// Safe to call more than once.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })

	timeout := b.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-b.done:
		slog.Info("Broadcaster stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Broadcaster stop timeout exceeded", "timeout", stopTimeout)
		metrics.BroadcasterStopTimeoutsTotal.Inc()
	}
}

func (b *Broadcaster) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Broadcaster panic recovered", "panic", r)
			b.registry.CloseAll("broadcaster panic")
		}
	}()

	ticker := b.clock.NewTicker(b.interval)
	defer ticker.Stop()
	defer close(b.done)

	for {
		select {
		case <-b.stopCh:
			// The loop is single-goroutine, so an in-flight pass has
			// already completed by the time this case is reached.
			b.registry.CloseAll("server shutting down")
			return
		case <-ticker.Chan():
			b.broadcastPass()
		}
	}
}

// broadcastPass is one drain-and-send cycle. Samples are sent in drain
// order; within a batch each sample is serialized once and handed to every
// client from the same snapshot, so a client observes the global FIFO order.
func (b *Broadcaster) broadcastPass() {
	batch := b.queue.DrainAll()
	if len(batch) == 0 {
		return
	}
	metrics.QueueDepth.Set(float64(len(batch)))

	clients := b.registry.Snapshot()
	if len(clients) == 0 {
		// No replay: samples drained with nobody connected are discarded.
		metrics.SamplesDroppedTotal.Add(float64(len(batch)))
		return
	}

	start := b.clock.Now()
	defer func() {
		metrics.BroadcasterPassDuration.Observe(b.clock.Since(start).Seconds())
	}()

	failed := make(map[uuid.UUID]struct{})
	for _, sample := range batch {
		data, err := json.Marshal(sample)
		if err != nil {
			slog.Error("Failed to marshal sample", "error", err)
			continue
		}
		for _, client := range clients {
			if _, gone := failed[client.ID()]; gone {
				continue
			}
			if !client.Send(data) {
				failed[client.ID()] = struct{}{}
			}
		}
		metrics.SamplesBroadcastTotal.Inc()
	}

	for id := range failed {
		logging.WithClient(id.String()).Warn("Evicting client after failed send")
		metrics.BroadcasterClientsEvicted.Inc()
		b.registry.Remove(id)
	}
}

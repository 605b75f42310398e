package broadcast

import (
	"sync"

	"github.com/kinetra/posestream/internal/domain"
	"github.com/kinetra/posestream/internal/metrics"
)

// SampleQueue is the thread-safe hand-off between the pose source and the
// broadcast loop. Enqueue never blocks the producer; DrainAll atomically
// takes everything enqueued so far, in FIFO order.
type SampleQueue struct {
	mu      sync.Mutex
	samples []domain.Sample
}

func NewSampleQueue() *SampleQueue {
	return &SampleQueue{}
}

// Enqueue appends s to the tail. Fire-and-forget: it cannot fail and is
// safe for concurrent use from any goroutine.
func (q *SampleQueue) Enqueue(s domain.Sample) {
	q.mu.Lock()
	q.samples = append(q.samples, s)
	q.mu.Unlock()
	metrics.SamplesEnqueuedTotal.Inc()
}

// DrainAll removes and returns all currently queued samples, or nil if the
// queue is empty. An Enqueue racing a drain lands either in this batch or
// the next one, never in both and never in neither.
func (q *SampleQueue) DrainAll() []domain.Sample {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.samples) == 0 {
		return nil
	}
	drained := q.samples
	q.samples = nil
	return drained
}

// Len reports the number of queued samples.
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.samples)
}

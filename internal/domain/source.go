package domain

import "context"

// EnqueueFunc hands one sample to the broadcast pipeline. It never blocks
// and never fails; samples enqueued while no broadcaster is draining are
// simply held until the next poll.
type EnqueueFunc func(Sample)

// PoseSource is any synchronous sampling process that yields samples into
// the pipeline. Run blocks until ctx is cancelled or the source fails.
type PoseSource interface {
	Run(ctx context.Context, enqueue EnqueueFunc) error
}

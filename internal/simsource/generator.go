// Package simsource provides a synthetic pose source for running the
// server without a camera pipeline. It emits arm-swing samples at a fixed
// rate, with visibility occasionally dipping below the tracking cutoff so
// consumers see arms drop to null the way a real tracker loses them.
package simsource

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kinetra/posestream/internal/domain"
)

// visibilityCutoff mirrors the tracker's minimum confidence for reporting
// an arm at all.
const visibilityCutoff = 0.5

type Generator struct {
	clock    clockwork.Clock
	interval time.Duration
}

// NewGenerator creates a source emitting sampleRate samples per second.
func NewGenerator(sampleRate float64, clock clockwork.Clock) *Generator {
	return &Generator{
		clock:    clock,
		interval: time.Duration(float64(time.Second) / sampleRate),
	}
}

// Run emits samples until ctx is cancelled, then returns ctx.Err().
func (g *Generator) Run(ctx context.Context, enqueue domain.EnqueueFunc) error {
	ticker := g.clock.NewTicker(g.interval)
	defer ticker.Stop()

	start := g.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			now := g.clock.Now()
			enqueue(g.sampleAt(now, now.Sub(start).Seconds()))
		}
	}
}

// sampleAt builds the sample for elapsed time t seconds.
func (g *Generator) sampleAt(now time.Time, t float64) domain.Sample {
	return domain.Sample{
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
		LeftArm:   g.arm(t, 0),
		RightArm:  g.arm(t, math.Pi),
	}
}

// arm synthesizes one arm: a near-fixed shoulder and a sinusoidally
// sweeping wrist. phase offsets the two arms against each other.
func (g *Generator) arm(t, phase float64) *domain.ArmPose {
	// Slow confidence wave that periodically drops the arm entirely.
	visibility := 0.6 + 0.35*math.Sin(t/7+phase)
	if visibility < visibilityCutoff {
		return nil
	}

	swing := math.Sin(2*math.Pi*0.5*t + phase)
	side := 1.0
	if phase > 0 {
		side = -1.0
	}

	return &domain.ArmPose{
		Shoulder: domain.Landmark{
			X:          0.2 * side,
			Y:          0.05 * math.Sin(t/3),
			Z:          0,
			Visibility: visibility,
		},
		Wrist: domain.Landmark{
			X:          0.2*side + 0.1*swing,
			Y:          -0.3 + 0.25*swing,
			Z:          0.1 * math.Cos(2*math.Pi*0.5*t+phase),
			Visibility: visibility,
		},
	}
}

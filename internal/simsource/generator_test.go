package simsource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinetra/posestream/internal/domain"
)

func TestGenerator_EmitsMonotonicSamples(t *testing.T) {
	g := NewGenerator(200, clockwork.NewRealClock())

	var mu sync.Mutex
	var samples []domain.Sample
	enqueue := func(s domain.Sample) {
		mu.Lock()
		samples = append(samples, s)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, enqueue) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(samples), 5, "expected several samples at 200/s over 100ms")
	for i := 1; i < len(samples); i++ {
		assert.Greater(t, samples[i].Timestamp, samples[i-1].Timestamp)
	}
}

func TestGenerator_ArmVisibilityGating(t *testing.T) {
	g := NewGenerator(30, clockwork.NewRealClock())

	// Early in the sweep both confidence waves sit above the cutoff
	arm := g.arm(0, 0)
	require.NotNil(t, arm)
	assert.GreaterOrEqual(t, arm.Shoulder.Visibility, visibilityCutoff)
	assert.LessOrEqual(t, arm.Shoulder.Visibility, 1.0)
	assert.Equal(t, arm.Shoulder.Visibility, arm.Wrist.Visibility)

	// At the trough of the confidence wave the arm drops out entirely.
	// sin(t/7) = -1 at t = 7*3*pi/2.
	trough := 7 * 3 * 3.14159265 / 2
	assert.Nil(t, g.arm(trough, 0))
}

func TestGenerator_ArmsMoveOverTime(t *testing.T) {
	g := NewGenerator(30, clockwork.NewRealClock())

	a := g.arm(0, 0)
	b := g.arm(0.25, 0)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a.Wrist, b.Wrist, "wrist should sweep between samples")
}

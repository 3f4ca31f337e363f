package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateSpacesConsecutiveCalls(t *testing.T) {
	g := NewGate(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Wait(ctx))
	}
	elapsed := time.Since(start)

	// First call is free; the next two each wait out the interval.
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
}

func TestGateDoesNotAccumulateBurst(t *testing.T) {
	g := NewGate(30 * time.Millisecond)
	require.True(t, g.Allow())

	// A quiet period longer than several intervals still grants one slot.
	time.Sleep(100 * time.Millisecond)
	assert.True(t, g.Allow())
	assert.False(t, g.Allow())
}

func TestGateWaitHonorsContext(t *testing.T) {
	g := NewGate(time.Hour)
	ctx := context.Background()
	require.NoError(t, g.Wait(ctx))

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, g.Wait(ctx))
}

func TestPacerFirstCallIsImmediate(t *testing.T) {
	p := NewPacer(time.Second)
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

package places

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateGate_AdmitsUnderCeiling(t *testing.T) {
	gate := NewRateGate(5, time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, gate.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "calls under the ceiling should not block")
}

func TestRateGate_BlocksUntilWindowReset(t *testing.T) {
	gate := NewRateGate(2, time.Millisecond)
	gate.window = 150 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, gate.Wait(ctx))
	require.NoError(t, gate.Wait(ctx))

	// The call over the ceiling must block until the window resets,
	// never error immediately.
	start := time.Now()
	err := gate.Wait(ctx)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "over-ceiling call should have waited for reset")
}

func TestRateGate_WaitAbortsOnContextCancel(t *testing.T) {
	gate := NewRateGate(1, time.Millisecond)
	gate.window = 10 * time.Second

	require.NoError(t, gate.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := gate.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateGate_CounterResetsAfterWindow(t *testing.T) {
	gate := NewRateGate(2, time.Millisecond)
	gate.window = 50 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, gate.Wait(ctx))
	require.NoError(t, gate.Wait(ctx))

	time.Sleep(60 * time.Millisecond)

	// Fresh window, fresh counter.
	start := time.Now()
	require.NoError(t, gate.Wait(ctx))
	assert.Less(t, time.Since(start), 20*time.Millisecond)
}

func TestRateGate_ConcurrentCallersDoNotRace(t *testing.T) {
	gate := NewRateGate(50, time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, gate.Wait(ctx))
		}()
	}
	wg.Wait()

	gate.mu.Lock()
	defer gate.mu.Unlock()
	assert.Equal(t, 50, gate.count)
}

package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemaining(t *testing.T) {
	start := time.Now()
	left := Remaining(start, time.Hour)
	assert.Greater(t, left, 59*time.Minute, "nearly the full margin should remain")

	spent := time.Now().Add(-2 * time.Hour)
	assert.Equal(t, time.Duration(0), Remaining(spent, time.Hour), "spent budgets clamp to zero")
}

func TestExceeded(t *testing.T) {
	assert.False(t, Exceeded(time.Now(), time.Hour))
	assert.True(t, Exceeded(time.Now().Add(-2*time.Second), time.Second))
}

func TestSleep_CompletesAndHonoursCancellation(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Minute), context.Canceled)

	// Zero and negative durations return immediately.
	require.NoError(t, Sleep(context.Background(), 0))
	require.NoError(t, Sleep(context.Background(), -time.Second))
}

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestManual checks advancing and monotonic Set.
func TestManual(t *testing.T) {
	t.Parallel()

	start := time.Unix(1000, 0)
	clk := NewManual(start)
	require.Equal(t, start, clk.Now())

	clk.Advance(2 * time.Second)
	require.Equal(t, start.Add(2*time.Second), clk.Now())

	clk.Set(start)
	require.Equal(t, start.Add(2*time.Second), clk.Now())

	clk.Set(start.Add(time.Minute))
	require.Equal(t, start.Add(time.Minute), clk.Now())
}

// TestReal ensures the real clock moves forward.
func TestReal(t *testing.T) {
	t.Parallel()

	var clk Clock = Real{}

	first := clk.Now()
	require.False(t, clk.Now().Before(first))
}

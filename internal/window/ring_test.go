package window

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRing_EvictsOldest checks FIFO order and eviction.
func TestRing_EvictsOldest(t *testing.T) {
	t.Parallel()

	ring := NewRing[int](3)

	for i := 1; i <= 3; i++ {
		_, evicted := ring.Push(i)
		require.False(t, evicted)
	}

	old, evicted := ring.Push(4)
	require.True(t, evicted)
	require.Equal(t, 1, old)
	require.Equal(t, 3, ring.Len())
	require.Equal(t, 3, ring.Cap())

	var got []int
	ring.Each(func(v int) { got = append(got, v) })
	require.Equal(t, []int{2, 3, 4}, got)

	ring.Reset()
	require.Zero(t, ring.Len())
	require.Equal(t, 1, NewRing[int](0).Cap())
}

// TestCounter_Ratio checks the incremental ratio against a brute-force count.
func TestCounter_Ratio(t *testing.T) {
	t.Parallel()

	const capacity = 5

	counter := NewCounter(capacity)
	require.Zero(t, counter.Ratio())

	var values []bool
	for i := range 23 {
		v := i%3 == 0 || i%7 == 0
		values = append(values, v)
		counter.Push(v)

		recent := values[max(0, len(values)-capacity):]

		closed := 0
		for _, r := range recent {
			if r {
				closed++
			}
		}

		require.LessOrEqual(t, counter.Len(), capacity)
		require.InDelta(t, float64(closed)/float64(len(recent)), counter.Ratio(), 1e-9)
	}

	counter.Reset()
	require.Zero(t, counter.Ratio())
}

// TestMean_Value checks the rolling mean.
func TestMean_Value(t *testing.T) {
	t.Parallel()

	mean := NewMean(2)
	require.Zero(t, mean.Value())

	mean.Push(10)
	require.InDelta(t, 10, mean.Value(), 1e-9)

	mean.Push(20)
	mean.Push(40)
	require.InDelta(t, 30, mean.Value(), 1e-9)
	require.Equal(t, 2, mean.Len())

	mean.Reset()
	require.Zero(t, mean.Len())
}

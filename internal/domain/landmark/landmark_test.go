package landmark

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFrame_Unmarshal checks 2 and 3 element points and the optional header fields.
func TestFrame_Unmarshal(t *testing.T) {
	t.Parallel()

	var frame Frame

	err := json.Unmarshal([]byte(`{"timestamp":1.5,"width":640,"height":480,"points":[[1,2],[3,4,0.5]]}`), &frame)
	require.NoError(t, err)
	require.InDelta(t, 1.5, frame.Timestamp, 1e-9)
	require.Equal(t, 640, frame.Width)
	require.Equal(t, []Point{{X: 1, Y: 2}, {X: 3, Y: 4, Z: 0.5}}, frame.Points)

	err = json.Unmarshal([]byte(`{"points":[[1]]}`), &frame)
	require.ErrorIs(t, err, errBadPoint)
}

// TestFrame_Subsets checks extraction and out-of-range handling.
func TestFrame_Subsets(t *testing.T) {
	t.Parallel()

	indices, err := NewIndices([]int{0, 1, 2, 3, 4, 5}, []int{5, 4, 3, 2, 1, 0}, []int{0, 0, 1, 1, 2, 9})
	require.NoError(t, err)

	frame := Frame{}
	for i := range 6 {
		frame.Points = append(frame.Points, Point{X: float64(i), Y: float64(10 * i)})
	}

	left, ok := frame.LeftEye(&indices)
	require.True(t, ok)
	require.Equal(t, Point2{X: 3, Y: 30}, left[3])

	right, ok := frame.RightEye(&indices)
	require.True(t, ok)
	require.Equal(t, Point2{X: 5, Y: 50}, right[0])

	_, ok = frame.Pose(&indices)
	require.False(t, ok)

	_, err = NewIndices([]int{1}, nil, nil)
	require.ErrorIs(t, err, errBadSubset)
}

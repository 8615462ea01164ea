package monitor

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ergomon/internal/domain/landmark"
)

// TestFrameReader_Next decodes frames, skips blank lines and survives bad lines.
func TestFrameReader_Next(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"timestamp":1.5,"width":640,"height":480,"points":[[1,2],[3,4,5]]}`,
		``,
		`not json`,
		`  {"points":[]}  `,
	}, "\n")

	reader := NewFrameReader(strings.NewReader(input))

	frame, err := reader.Next()
	require.NoError(t, err)
	require.InDelta(t, 1.5, frame.Timestamp, 1e-12)
	require.Equal(t, 640, frame.Width)
	require.Equal(t, []landmark.Point{{X: 1, Y: 2}, {X: 3, Y: 4, Z: 5}}, frame.Points)

	_, err = reader.Next()
	require.ErrorContains(t, err, "line 3")
	require.Equal(t, 3, reader.Line())

	frame, err = reader.Next()
	require.NoError(t, err)
	require.Empty(t, frame.Points)

	_, err = reader.Next()
	require.ErrorIs(t, err, io.EOF)
}

// TestFrameTime maps timestamps and spaces untimed frames by the frame period.
func TestFrameTime(t *testing.T) {
	t.Parallel()

	timed := frameTime(&landmark.Frame{Timestamp: 2.25}, replayEpoch, 30)
	require.Equal(t, replayEpoch.Add(2250*time.Millisecond), timed)

	untimed := frameTime(&landmark.Frame{}, timed, 20)
	require.Equal(t, timed.Add(50*time.Millisecond), untimed)

	require.Equal(t, timed.Add(time.Second), frameTime(&landmark.Frame{}, timed, 0))
}

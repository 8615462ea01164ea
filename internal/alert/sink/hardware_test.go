package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

var errTestPin = errors.New("test pin error")

// transition is one recorded pin change.
type transition struct {
	// on is the written level.
	on bool
	// at is the offset from the start of the test.
	at time.Duration
}

// fakePin records transitions against the bubble clock.
type fakePin struct {
	// start anchors the offsets.
	start time.Time
	// failOn makes Set fail when driving high.
	failOn bool
	// mu guards the fields below.
	mu sync.Mutex
	// transitions are the recorded changes.
	transitions []transition
	// closed is set by Close.
	closed bool
}

func (p *fakePin) Set(_ context.Context, on bool) error {
	if on && p.failOn {
		return errTestPin
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.transitions = append(p.transitions, transition{on: on, at: time.Since(p.start)})

	return nil
}

func (p *fakePin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	return nil
}

// TestHardware_PlaysPatternTiming checks the fatigue rhythm and total length.
func TestHardware_PlaysPatternTiming(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		pin := &fakePin{start: time.Now()}
		hardware := NewHardware(pin)

		require.NoError(t, hardware.Deliver(context.Background(), testEvent(domain.CategoryFatigue)))
		require.Equal(t, time.Second, time.Since(pin.start))

		ms := time.Millisecond
		require.Equal(t, []transition{
			{true, 0}, {false, 100 * ms},
			{true, 200 * ms}, {false, 300 * ms},
			{true, 400 * ms}, {false, 500 * ms},
		}, pin.transitions)

		require.NoError(t, hardware.Close())
		require.True(t, pin.closed)
	})
}

// TestHardware_CancelLeavesPinLow stops in the middle of a beep.
func TestHardware_CancelLeavesPinLow(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		pin := &fakePin{start: time.Now()}
		hardware := NewHardware(pin)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		err := hardware.Deliver(ctx, testEvent(domain.CategorySevere))
		require.ErrorIs(t, err, context.DeadlineExceeded)

		last := pin.transitions[len(pin.transitions)-1]
		require.False(t, last.on)
		require.Equal(t, 150*time.Millisecond, last.at)
	})
}

// TestHardware_PinFailure reports the failing transition.
func TestHardware_PinFailure(t *testing.T) {
	t.Parallel()

	hardware := NewHardware(&fakePin{failOn: true})

	err := hardware.Deliver(context.Background(), testEvent(domain.CategoryPosture))
	require.ErrorIs(t, err, errTestPin)
}

// TestPatternFor covers every category and the fallback.
func TestPatternFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category domain.Category
		beeps    int
	}{
		{domain.CategoryFatigue, 3},
		{domain.CategoryDistance, 2},
		{domain.CategoryPosture, 3},
		{domain.CategorySevere, 4},
		{domain.Category("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			t.Parallel()

			require.Len(t, PatternFor(tt.category), tt.beeps)
		})
	}
}

// TestGPIOPin_WritesSysfs drives a fake sysfs tree.
func TestGPIOPin_WritesSysfs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pinDir := filepath.Join(root, "gpio18")

	require.NoError(t, os.Mkdir(pinDir, 0o755))

	for _, name := range []string{"direction", "value"} {
		require.NoError(t, os.WriteFile(filepath.Join(pinDir, name), nil, 0o644))
	}

	for _, name := range []string{"export", "unexport"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	pin, err := OpenGPIOPin(context.Background(), root, 18)
	require.NoError(t, err)

	requireContents(t, filepath.Join(pinDir, "direction"), "out")
	requireContents(t, filepath.Join(pinDir, "value"), "0")

	require.NoError(t, pin.Set(context.Background(), true))
	requireContents(t, filepath.Join(pinDir, "value"), "1")

	require.NoError(t, pin.Close())
	requireContents(t, filepath.Join(pinDir, "value"), "0")
	requireContents(t, filepath.Join(root, "unexport"), "18")
}

// TestGPIOPin_MissingRoot fails when sysfs is unavailable.
func TestGPIOPin_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := OpenGPIOPin(context.Background(), filepath.Join(t.TempDir(), "missing"), 18)
	require.Error(t, err)
}

func requireContents(t *testing.T, path, want string) {
	t.Helper()

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, string(got))
}

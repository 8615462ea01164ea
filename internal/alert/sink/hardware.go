package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/logger"
)

// Beep is one on/off step of a pattern.
type Beep struct {
	// On is how long the pin stays high.
	On time.Duration
	// Off is the silence after it.
	Off time.Duration
}

// beep builds a step from milliseconds.
func beep(on, off int) Beep {
	return Beep{
		On:  time.Duration(on) * time.Millisecond,
		Off: time.Duration(off) * time.Millisecond,
	}
}

// defaultPattern is played for categories without a pattern.
var defaultPattern = []Beep{beep(200, 500)}

// patterns distinguish categories by rhythm.
var patterns = map[domain.Category][]Beep{
	domain.CategoryFatigue:  {beep(100, 100), beep(100, 100), beep(100, 500)},
	domain.CategoryDistance: {beep(200, 200), beep(200, 500)},
	domain.CategoryPosture:  {beep(150, 150), beep(150, 150), beep(150, 500)},
	domain.CategorySevere:   {beep(300, 100), beep(300, 100), beep(300, 100), beep(300, 500)},
}

// PatternFor returns the beep pattern of a category.
func PatternFor(category domain.Category) []Beep {
	if pattern, ok := patterns[category]; ok {
		return pattern
	}

	return defaultPattern
}

// Hardware plays a category specific pattern on a buzzer or LED pin.
type Hardware struct {
	// pin is the driven output.
	pin Pin
	// mu serialises patterns on the single pin.
	mu sync.Mutex
}

// NewHardware creates the sink around an opened pin.
func NewHardware(pin Pin) *Hardware {
	return &Hardware{
		pin: pin,
	}
}

// Name returns the sink name.
func (h *Hardware) Name() string {
	return "hardware"
}

// Deliver plays the pattern. It stops early and leaves the pin low when ctx is done.
func (h *Hardware) Deliver(ctx context.Context, event *domain.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.DebugKV(ctx, "Playing pattern", "category", event.Category)

	for _, step := range PatternFor(event.Category) {
		if err := h.pin.Set(ctx, true); err != nil {
			return fmt.Errorf("pin on: %w", err)
		}

		waitErr := wait(ctx, step.On)

		if err := h.pin.Set(ctx, false); err != nil {
			return fmt.Errorf("pin off: %w", err)
		}

		if waitErr != nil {
			return waitErr
		}

		if err := wait(ctx, step.Off); err != nil {
			return err
		}
	}

	return nil
}

// Close releases the pin.
func (h *Hardware) Close() error {
	return h.pin.Close()
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package fatigue

import (
	"time"

	"github.com/oshokin/ergomon/internal/analysis/geometry"
	"github.com/oshokin/ergomon/internal/analysis/sustain"
	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/domain/landmark"
	"github.com/oshokin/ergomon/internal/window"
)

const (
	// severePerclos is the PERCLOS above which fatigue is severe.
	severePerclos = 0.20
	// mildPerclos is the PERCLOS above which fatigue is mild.
	mildPerclos = 0.10
	// moderateClosure is the closure length above which fatigue is moderate.
	moderateClosure = time.Second
	// blinkPeriod is the blink accounting period.
	blinkPeriod = time.Minute
)

// Status is the fatigue snapshot for one frame.
type Status struct {
	// LeftEAR is the left eye aspect ratio, 0 when unavailable.
	LeftEAR float64
	// RightEAR is the right eye aspect ratio, 0 when unavailable.
	RightEAR float64
	// AvgEAR is the mean of the available eyes.
	AvgEAR float64
	// EARAvailable is false when neither eye produced a ratio this frame.
	EARAvailable bool
	// Closed reports whether AvgEAR is below the threshold.
	Closed bool
	// BlinkCounter is the number of blinks in the current period.
	BlinkCounter int
	// BlinksPerMinute is the count published at the end of the last period.
	BlinksPerMinute int
	// Blinking is true while a blink is in progress.
	Blinking bool
	// Perclos is the fraction of closed frames in the window.
	Perclos float64
	// ClosedDuration is how long the eyes have been closed continuously.
	ClosedDuration time.Duration
	// Drowsy is true once ClosedDuration exceeds the configured limit.
	Drowsy bool
	// Level is the classified fatigue level.
	Level Level
}

// Description returns the level description.
func (s *Status) Description() string {
	return s.Level.String()
}

// Tracker keeps eye state across frames. It is driven by one goroutine.
type Tracker struct {
	// cfg holds thresholds.
	cfg config.FatigueConfig
	// history holds recent closed flags.
	history *window.Counter
	// closure times continuous closure.
	closure sustain.Timer
	// blinkCounter counts blinks in the current period.
	blinkCounter int
	// blinksPerMinute is the last published count.
	blinksPerMinute int
	// blinking is true between the closing and opening frame of a blink.
	blinking bool
	// periodStart anchors the blink accounting period.
	periodStart time.Time
	// last is the status returned by the previous update.
	last Status
}

// NewTracker creates a tracker whose PERCLOS window spans cfg.PerclosWindow at fps frames per second.
func NewTracker(cfg config.FatigueConfig, fps int) *Tracker {
	return &Tracker{
		cfg:     cfg,
		history: window.NewCounter(cfg.PerclosCapacity(fps)),
	}
}

// Update processes one frame's eye samples. A nil sample means the eye was not detected.
// When neither eye yields a ratio the frame is skipped: the previous counters are
// reported with a neutral level and the internal state is left untouched.
func (t *Tracker) Update(left, right *landmark.EyeSample, now time.Time) Status {
	leftEAR := aspectRatio(left)
	rightEAR := aspectRatio(right)

	avg, ok := average(leftEAR, rightEAR)
	if !ok {
		return Status{
			BlinkCounter:    t.last.BlinkCounter,
			BlinksPerMinute: t.last.BlinksPerMinute,
			Blinking:        t.last.Blinking,
			Perclos:         t.last.Perclos,
			ClosedDuration:  t.last.ClosedDuration,
			Level:           LevelNormal,
		}
	}

	closed := avg < t.cfg.EARThreshold

	t.updateBlinks(closed, now)
	t.history.Push(closed)

	closedDuration := t.closure.Observe(closed, now)

	status := Status{
		LeftEAR:         leftEAR,
		RightEAR:        rightEAR,
		AvgEAR:          avg,
		EARAvailable:    true,
		Closed:          closed,
		BlinkCounter:    t.blinkCounter,
		BlinksPerMinute: t.blinksPerMinute,
		Blinking:        t.blinking,
		Perclos:         t.history.Ratio(),
		ClosedDuration:  closedDuration,
		Drowsy:          closed && closedDuration > t.cfg.ClosedEyeDuration,
	}
	status.Level = t.classify(&status)

	t.last = status

	return status
}

// Reset clears all state.
func (t *Tracker) Reset() {
	t.history.Reset()
	t.closure.Reset()
	t.blinkCounter = 0
	t.blinksPerMinute = 0
	t.blinking = false
	t.periodStart = time.Time{}
	t.last = Status{}
}

func (t *Tracker) updateBlinks(closed bool, now time.Time) {
	switch {
	case closed && !t.blinking:
		t.blinking = true
		t.blinkCounter++
	case !closed && t.blinking:
		t.blinking = false
	}

	if t.periodStart.IsZero() {
		t.periodStart = now

		return
	}

	if now.Sub(t.periodStart) >= blinkPeriod {
		t.blinksPerMinute = t.blinkCounter
		t.blinkCounter = 0
		t.periodStart = now
	}
}

// classify applies the level rules, first match wins.
func (t *Tracker) classify(s *Status) Level {
	switch {
	case s.Perclos > severePerclos || s.Drowsy:
		return LevelSevere
	case s.Perclos > t.cfg.PerclosThreshold || s.ClosedDuration > moderateClosure:
		return LevelModerate
	case s.Perclos > mildPerclos ||
		s.BlinksPerMinute < t.cfg.BlinkMin ||
		s.BlinksPerMinute > t.cfg.BlinkMax:
		return LevelMild
	default:
		return LevelNormal
	}
}

func aspectRatio(eye *landmark.EyeSample) float64 {
	if eye == nil {
		return 0
	}

	return geometry.AspectRatio(*eye)
}

// average returns the mean of the positive ratios.
func average(left, right float64) (float64, bool) {
	switch {
	case left > 0 && right > 0:
		return (left + right) / 2, true
	case left > 0:
		return left, true
	case right > 0:
		return right, true
	default:
		return 0, false
	}
}

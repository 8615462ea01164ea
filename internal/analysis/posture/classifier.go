package posture

import (
	"time"

	"github.com/oshokin/ergomon/internal/analysis/sustain"
	"github.com/oshokin/ergomon/internal/config"
)

// Type is the posture label.
type Type string

// Posture labels.
const (
	TypeNormal   Type = "Normal"
	TypeHeadDown Type = "Head Down"
	TypeHeadUp   Type = "Head Up"
	TypeUnknown  Type = "Unknown"
)

// Status is the posture snapshot for one frame.
type Status struct {
	Angles

	// PoseValid is false when this frame's pose could not be solved.
	PoseValid bool
	// Type is the posture label.
	Type Type
	// BadDuration is how long the posture has been continuously bad.
	BadDuration time.Duration
	// IsBadPosture is true once BadDuration reaches the warning duration.
	IsBadPosture bool
}

// Classify labels a pitch in degrees.
func Classify(pitch, thresholdDown, thresholdUp float64) Type {
	switch {
	case pitch > thresholdDown:
		return TypeHeadDown
	case pitch < thresholdUp:
		return TypeHeadUp
	default:
		return TypeNormal
	}
}

// Classifier times bad posture across frames. It is driven by one goroutine.
type Classifier struct {
	// cfg holds thresholds.
	cfg config.PostureConfig
	// angles are the last valid angles.
	angles Angles
	// bad times continuous bad posture.
	bad sustain.Timer
}

// NewClassifier creates a classifier.
func NewClassifier(cfg config.PostureConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Update processes one frame's pose. An invalid pose freezes the angles,
// reports Unknown and leaves the bad posture timer running.
func (c *Classifier) Update(pose Pose, now time.Time) Status {
	if !pose.Valid {
		return Status{
			Angles:      c.angles,
			Type:        TypeUnknown,
			BadDuration: c.bad.Elapsed(now),
		}
	}

	c.angles = pose.Angles

	kind := Classify(pose.Pitch, c.cfg.PitchThresholdDown, c.cfg.PitchThresholdUp)
	isBad := kind != TypeNormal
	duration := c.bad.Observe(isBad, now)

	return Status{
		Angles:       pose.Angles,
		PoseValid:    true,
		Type:         kind,
		BadDuration:  duration,
		IsBadPosture: isBad && duration >= c.cfg.WarningDuration,
	}
}

// Reset clears the angles and the timer.
func (c *Classifier) Reset() {
	c.angles = Angles{}
	c.bad.Reset()
}

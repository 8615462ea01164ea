package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/ergomon/internal/analysis/distance"
	"github.com/oshokin/ergomon/internal/analysis/fatigue"
	"github.com/oshokin/ergomon/internal/analysis/geometry"
	"github.com/oshokin/ergomon/internal/analysis/posture"
	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/domain/landmark"
)

// Alert messages handed to the arbiter.
const (
	severeMessage   = "Severe fatigue detected! Please rest immediately."
	fatigueMessage  = "%s. Please take a break to rest."
	distanceMessage = "You are too close to the screen. Please move back."
	postureMessage  = "Poor posture detected: %s. Please adjust your sitting position."
)

// Health score penalties.
const (
	healthMax           = 100
	fatigueLevelPenalty = 20
	tooClosePenalty     = 20
	badPosturePenalty   = 20
)

// Firer accepts alert attempts. *alert.Arbiter implements it.
type Firer interface {
	Fire(ctx context.Context, category domain.Category, message string, severity domain.Severity) bool
}

// Snapshot is the full status derived from one frame.
type Snapshot struct {
	// Timestamp is the clock reading the frame was processed at.
	Timestamp time.Time
	// FaceDetected is false for frames without landmarks.
	FaceDetected bool
	// Fatigue is the eye state.
	Fatigue fatigue.Status
	// Distance is the viewing distance state.
	Distance distance.Status
	// Posture is the head posture state.
	Posture posture.Status
	// Health is the combined score in [0, 100].
	Health int
	// Fired lists categories the arbiter accepted for this frame.
	Fired []domain.Category
}

// Engine runs the analyzers over frames. It is driven by one goroutine.
type Engine struct {
	// clock is read once per frame and shared with the arbiter.
	clock clock.Clock
	// indices select the landmark subsets.
	indices landmark.Indices
	// fatigue tracks eye closure.
	fatigue *fatigue.Tracker
	// distance estimates the viewing distance.
	distance *distance.Estimator
	// pose solves the head pose.
	pose *posture.Estimator
	// posture classifies the pitch.
	posture *posture.Classifier
	// alerts receives alert attempts, nil to only analyze.
	alerts Firer
}

// NewEngine builds the analyzers from a validated configuration.
func NewEngine(cfg *config.Config, clk clock.Clock, alerts Firer) (*Engine, error) {
	if clk == nil {
		clk = clock.Real{}
	}

	indices, err := landmark.NewIndices(cfg.Landmarks.LeftEye, cfg.Landmarks.RightEye, cfg.Landmarks.Pose)
	if err != nil {
		return nil, fmt.Errorf("build landmark indices: %w", err)
	}

	return &Engine{
		clock:    clk,
		indices:  indices,
		fatigue:  fatigue.NewTracker(cfg.Fatigue, cfg.Camera.FPS),
		distance: distance.NewEstimator(cfg.Distance, cfg.Camera.FocalLength),
		pose:     posture.NewEstimator(cfg.Camera),
		posture:  posture.NewClassifier(cfg.Posture),
		alerts:   alerts,
	}, nil
}

// Process analyzes one frame and attempts the alerts its snapshot calls for.
// Missing landmarks make the affected analyzer treat the frame as degenerate,
// and a frame without a face attempts no alert.
func (e *Engine) Process(ctx context.Context, frame *landmark.Frame) Snapshot {
	now := e.clock.Now()

	if frame.Width > 0 && frame.Height > 0 {
		e.pose.SetImageSize(frame.Width, frame.Height)
	}

	var leftEye, rightEye *landmark.EyeSample

	if sample, ok := frame.LeftEye(&e.indices); ok {
		leftEye = &sample
	}

	if sample, ok := frame.RightEye(&e.indices); ok {
		rightEye = &sample
	}

	var faceWidth float64
	if len(frame.Points) > 0 {
		faceWidth = geometry.BoundingBox(frame.XY()).Width()
	}

	var pose posture.Pose
	if sample, ok := frame.Pose(&e.indices); ok {
		pose = e.pose.Estimate(sample)
	}

	snapshot := Snapshot{
		Timestamp:    now,
		FaceDetected: len(frame.Points) > 0,
		Fatigue:      e.fatigue.Update(leftEye, rightEye, now),
		Distance: e.distance.Update(distance.Input{
			LeftEye:   leftEye,
			RightEye:  rightEye,
			FaceWidth: faceWidth,
		}, now),
		Posture: e.posture.Update(pose, now),
	}

	snapshot.Health = Health(&snapshot)

	if e.alerts != nil && snapshot.FaceDetected {
		snapshot.Fired = e.dispatch(ctx, &snapshot)
	}

	return snapshot
}

// SetFocalLength applies a new calibration to the distance and pose estimators.
func (e *Engine) SetFocalLength(focalLength float64) {
	e.distance.SetFocalLength(focalLength)
	e.pose.SetFocalLength(focalLength)
}

// Reset clears every analyzer.
func (e *Engine) Reset() {
	e.fatigue.Reset()
	e.distance.Reset()
	e.posture.Reset()
}

// dispatch applies the priority policy. Severe fatigue suppresses every other
// attempt for the frame; otherwise categories are attempted independently.
func (e *Engine) dispatch(ctx context.Context, s *Snapshot) []domain.Category {
	var fired []domain.Category

	attempt := func(category domain.Category, message string, severity domain.Severity) {
		if e.alerts.Fire(ctx, category, message, severity) {
			fired = append(fired, category)
		}
	}

	if s.Fatigue.Level == fatigue.LevelSevere {
		attempt(domain.CategorySevere, severeMessage, domain.SeverityCritical)

		return fired
	}

	if s.Fatigue.Level >= fatigue.LevelMild {
		attempt(domain.CategoryFatigue, fmt.Sprintf(fatigueMessage, s.Fatigue.Description()), domain.SeverityWarning)
	}

	if s.Distance.IsTooClose {
		attempt(domain.CategoryDistance, distanceMessage, domain.SeverityWarning)
	}

	if s.Posture.IsBadPosture {
		attempt(domain.CategoryPosture, fmt.Sprintf(postureMessage, s.Posture.Type), domain.SeverityWarning)
	}

	return fired
}

// Health scores a snapshot: 20 points off per fatigue level, 20 for sitting
// too close and 20 for bad posture, floored at 0.
func Health(s *Snapshot) int {
	score := healthMax - fatigueLevelPenalty*int(s.Fatigue.Level)

	if s.Distance.IsTooClose {
		score -= tooClosePenalty
	}

	if s.Posture.IsBadPosture {
		score -= badPosturePenalty
	}

	return max(0, score)
}

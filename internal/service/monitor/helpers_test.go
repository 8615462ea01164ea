package monitor

import (
	"context"
	"math"
	"sync"

	"github.com/oshokin/ergomon/internal/analysis/posture"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/domain/landmark"
)

const (
	// meshSize is the MediaPipe Face Mesh landmark count.
	meshSize = 468
	// eyeHalfWidth is half the corner-to-corner span of a synthetic eye.
	eyeHalfWidth = 15
	// openLid and closedLid are the lid offsets giving EAR 1/3 and 1/15.
	openLid   = 5
	closedLid = 1
)

// attempt is one recorded Fire call.
type attempt struct {
	category domain.Category
	message  string
	severity domain.Severity
}

// fakeFirer records attempts and accepts them unless reject is set.
type fakeFirer struct {
	// reject makes Fire return false.
	reject bool
	// mu guards attempts.
	mu sync.Mutex
	// attempts are the recorded calls.
	attempts []attempt
}

func (f *fakeFirer) Fire(_ context.Context, category domain.Category, message string, severity domain.Severity) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts = append(f.attempts, attempt{category, message, severity})

	return !f.reject
}

// testConfig keeps the pose indices apart from the eye corners so synthetic
// eyes do not move the projected pose points.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Landmarks.Pose = []int{1, 152, 70, 300, 61, 291}

	return cfg
}

// face describes a synthetic frame.
type face struct {
	// eyeSpan is the pixel distance between eye centers.
	eyeSpan float64
	// lid is the vertical lid offset.
	lid float64
	// pitch is the head pitch in degrees.
	pitch float64
}

// frame renders the face with the landmark layout of cfg.
func (f face) frame(cfg *config.Config) *landmark.Frame {
	points := make([]landmark.Point, meshSize)
	for i := range points {
		points[i] = landmark.Point{X: 320, Y: 240}
	}

	eye := func(indices []int, cx float64) {
		offsets := [landmark.SubsetSize]landmark.Point2{
			{X: -eyeHalfWidth}, {X: -5, Y: -f.lid}, {X: 5, Y: -f.lid},
			{X: eyeHalfWidth}, {X: 5, Y: f.lid}, {X: -5, Y: f.lid},
		}

		for i, index := range indices {
			points[index] = landmark.Point{X: cx + offsets[i].X, Y: 200 + offsets[i].Y}
		}
	}

	eye(cfg.Landmarks.LeftEye, 320-f.eyeSpan/2)
	eye(cfg.Landmarks.RightEye, 320+f.eyeSpan/2)

	rotation := posture.RotationY(f.pitch * math.Pi / 180).Mul(posture.RotationX(math.Pi))
	translation := posture.Vec3{0, 0, 1000}

	for i, index := range cfg.Landmarks.Pose {
		p := rotation.MulVec(posture.ModelPoints[i]).Add(translation)
		points[index] = landmark.Point{
			X: cfg.Camera.FocalLength*p[0]/p[2] + float64(cfg.Camera.Width)/2,
			Y: cfg.Camera.FocalLength*p[1]/p[2] + float64(cfg.Camera.Height)/2,
		}
	}

	return &landmark.Frame{
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		Points: points,
	}
}

// upright is an open-eyed face at 60 cm with a level head.
var upright = face{eyeSpan: 63, lid: openLid}

package distance

import (
	"errors"
	"time"

	"github.com/oshokin/ergomon/internal/analysis/geometry"
	"github.com/oshokin/ergomon/internal/analysis/sustain"
	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/domain/landmark"
	"github.com/oshokin/ergomon/internal/window"
)

// Zone is a coarse label for the smoothed distance.
type Zone string

// Distance zones relative to the warning distance.
const (
	ZoneUnknown  Zone = "Unknown"
	ZoneTooClose Zone = "Too Close"
	ZoneClose    Zone = "Close"
	ZoneNormal   Zone = "Normal"
	ZoneFar      Zone = "Far"
)

const (
	// tooCloseFactor scales the warning distance into the Too Close zone bound.
	tooCloseFactor = 0.7
	// farFactor scales the warning distance into the Far zone bound.
	farFactor = 1.5
)

// errBadCalibration is returned when calibration inputs are not positive.
var errBadCalibration = errors.New("calibration inputs must be positive")

// Input is what one frame offers for distance estimation. Nil eyes were not detected.
type Input struct {
	// LeftEye is the left eye sample.
	LeftEye *landmark.EyeSample
	// RightEye is the right eye sample.
	RightEye *landmark.EyeSample
	// FaceWidth is the face bounding box width in pixels, 0 when unknown.
	FaceWidth float64
}

// Status is the distance snapshot for one frame.
type Status struct {
	// Raw is this frame's estimate in centimeters, 0 when degenerate.
	Raw float64
	// Method is the method that produced Raw, empty when degenerate.
	Method string
	// Distance is the smoothed distance in centimeters, 0 when no sample is available.
	Distance float64
	// WarningDistance is the configured bound.
	WarningDistance float64
	// CloseDuration is how long the smoothed distance has been below the bound.
	CloseDuration time.Duration
	// IsTooClose is true once CloseDuration reaches the warning duration.
	IsTooClose bool
	// Zone labels the smoothed distance.
	Zone Zone
}

// ByEyeDistance returns knownEyeDistance * focalLength / |left - right|, or 0 when the centers coincide.
func ByEyeDistance(left, right landmark.Point2, knownEyeDistance, focalLength float64) float64 {
	pixels := geometry.Distance(left, right)
	if pixels == 0 {
		return 0
	}

	return knownEyeDistance * focalLength / pixels
}

// ByFaceWidth returns knownFaceWidth * focalLength / width, or 0 when width is not positive.
func ByFaceWidth(width, knownFaceWidth, focalLength float64) float64 {
	if width <= 0 {
		return 0
	}

	return knownFaceWidth * focalLength / width
}

// CalibrateFocalLength returns the focal length in pixels for a face box of
// faceWidth pixels observed at measuredDistance centimeters.
func CalibrateFocalLength(measuredDistance, faceWidth, knownFaceWidth float64) (float64, error) {
	if measuredDistance <= 0 || faceWidth <= 0 || knownFaceWidth <= 0 {
		return 0, errBadCalibration
	}

	return measuredDistance * faceWidth / knownFaceWidth, nil
}

// Classify maps a smoothed distance to a zone.
func Classify(distance, warningDistance float64) Zone {
	switch {
	case distance <= 0:
		return ZoneUnknown
	case distance < warningDistance*tooCloseFactor:
		return ZoneTooClose
	case distance < warningDistance:
		return ZoneClose
	case distance < warningDistance*farFactor:
		return ZoneNormal
	default:
		return ZoneFar
	}
}

// Estimator smooths distance readings and times proximity. It is driven by one goroutine.
type Estimator struct {
	// cfg holds thresholds and constants.
	cfg config.DistanceConfig
	// focalLength is the camera focal length in pixels.
	focalLength float64
	// history holds recent valid readings.
	history *window.Mean
	// proximity times continuous closeness.
	proximity sustain.Timer
}

// NewEstimator creates an estimator.
func NewEstimator(cfg config.DistanceConfig, focalLength float64) *Estimator {
	return &Estimator{
		cfg:         cfg,
		focalLength: focalLength,
		history:     window.NewMean(cfg.SmoothingWindow),
	}
}

// SetFocalLength replaces the focal length used for new readings.
func (e *Estimator) SetFocalLength(focalLength float64) {
	e.focalLength = focalLength
}

// Update processes one frame. A degenerate frame leaves the smoothed distance
// and the proximity timer unchanged and is never reported as too close.
func (e *Estimator) Update(in Input, now time.Time) Status {
	raw, method := e.estimate(in)
	if raw <= 0 {
		smoothed := e.history.Value()

		return Status{
			Distance:        smoothed,
			WarningDistance: e.cfg.WarningDistance,
			CloseDuration:   e.proximity.Elapsed(now),
			Zone:            Classify(smoothed, e.cfg.WarningDistance),
		}
	}

	e.history.Push(raw)

	smoothed := e.history.Value()
	tooClose := smoothed > 0 && smoothed < e.cfg.WarningDistance
	duration := e.proximity.Observe(tooClose, now)

	return Status{
		Raw:             raw,
		Method:          method,
		Distance:        smoothed,
		WarningDistance: e.cfg.WarningDistance,
		CloseDuration:   duration,
		IsTooClose:      tooClose && duration >= e.cfg.WarningDuration,
		Zone:            Classify(smoothed, e.cfg.WarningDistance),
	}
}

// Reset clears the history and the proximity timer.
func (e *Estimator) Reset() {
	e.history.Reset()
	e.proximity.Reset()
}

func (e *Estimator) estimate(in Input) (float64, string) {
	if e.cfg.Method == config.MethodEye && in.LeftEye != nil && in.RightEye != nil {
		raw := ByEyeDistance(
			geometry.EyeCenter(*in.LeftEye),
			geometry.EyeCenter(*in.RightEye),
			e.cfg.KnownEyeDistance,
			e.focalLength,
		)
		if raw > 0 {
			return raw, config.MethodEye
		}
	}

	if raw := ByFaceWidth(in.FaceWidth, e.cfg.KnownFaceWidth, e.focalLength); raw > 0 {
		return raw, config.MethodFace
	}

	return 0, ""
}

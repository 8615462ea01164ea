package posture

import (
	"errors"
	"fmt"
	"math"

	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/domain/landmark"
)

// ModelPoints is the reference face in millimeters, in PoseSample order:
// nose tip, chin, left eye corner, right eye corner, left and right mouth corners.
var ModelPoints = [landmark.SubsetSize]Vec3{
	{0, 0, 0},
	{0, -330, -65},
	{-225, 170, -135},
	{225, 170, -135},
	{-150, -150, -125},
	{150, -150, -125},
}

const (
	// collinearRatio is the smallest eigenvalue ratio of the image point spread.
	collinearRatio = 1e-6
	// correspondences is the number of point pairs used by the solver.
	correspondences = landmark.SubsetSize
)

var (
	// errDegenerate is returned when the image points are coincident or collinear.
	errDegenerate = errors.New("image points are degenerate")
	// errBehindCamera is returned when the solved face lies behind the camera.
	errBehindCamera = errors.New("solution is behind the camera")
	// errNotFinite is returned when the solver produced NaN or Inf.
	errNotFinite = errors.New("solution is not finite")
)

// Pose is the head pose for one frame.
type Pose struct {
	Angles

	// Valid is false when the solve failed; the other fields are then zero.
	Valid bool
	// Rotation maps model coordinates to camera coordinates.
	Rotation Mat3
	// Translation is the model origin in camera coordinates, millimeters.
	Translation Vec3
	// ReprojectionError is the RMS reprojection error in pixels.
	ReprojectionError float64
}

// Estimator solves head pose with a pinhole camera without distortion.
type Estimator struct {
	// focalLength is fx = fy in pixels.
	focalLength float64
	// cx is the principal point X, the image center.
	cx float64
	// cy is the principal point Y, the image center.
	cy float64
}

// NewEstimator creates an estimator for the configured camera.
func NewEstimator(camera config.CameraConfig) *Estimator {
	e := &Estimator{focalLength: camera.FocalLength}
	e.SetImageSize(camera.Width, camera.Height)

	return e
}

// SetFocalLength replaces the focal length.
func (e *Estimator) SetFocalLength(focalLength float64) {
	e.focalLength = focalLength
}

// SetImageSize moves the principal point to the center of a width x height image.
func (e *Estimator) SetImageSize(width, height int) {
	e.cx = float64(width) / 2
	e.cy = float64(height) / 2
}

// Estimate solves the pose for one pose sample. Failures return a Pose with Valid false.
func (e *Estimator) Estimate(points landmark.PoseSample) Pose {
	pose, err := e.solve(points)
	if err != nil {
		return Pose{}
	}

	return pose
}

func (e *Estimator) solve(points landmark.PoseSample) (Pose, error) {
	if e.focalLength <= 0 {
		return Pose{}, errNotFinite
	}

	// Normalized image coordinates remove the intrinsics from the problem.
	var image [correspondences]landmark.Point2
	for i, p := range points {
		image[i] = landmark.Point2{
			X: (p.X - e.cx) / e.focalLength,
			Y: (p.Y - e.cy) / e.focalLength,
		}
	}

	if degenerate(image[:]) {
		return Pose{}, errDegenerate
	}

	rotation, translation, err := initialPose(&ModelPoints, &image)
	if err != nil {
		return Pose{}, fmt.Errorf("initialize pose: %w", err)
	}

	rotation, translation, cost := refine(&ModelPoints, &image, rotation, translation)

	for i := range 3 {
		if !finite(rotation[i][0], rotation[i][1], rotation[i][2], translation[i]) {
			return Pose{}, errNotFinite
		}
	}

	for _, model := range ModelPoints {
		if rotation.MulVec(model).Add(translation)[2] <= 0 {
			return Pose{}, errBehindCamera
		}
	}

	return Pose{
		Angles:            EulerAngles(rotation),
		Valid:             true,
		Rotation:          rotation,
		Translation:       translation,
		ReprojectionError: math.Sqrt(cost/correspondences) * e.focalLength,
	}, nil
}

// degenerate reports whether the points are coincident or nearly collinear,
// judged by the eigenvalues of their covariance.
func degenerate(points []landmark.Point2) bool {
	var mean landmark.Point2
	for _, p := range points {
		mean.X += p.X
		mean.Y += p.Y
	}

	n := float64(len(points))
	mean.X /= n
	mean.Y /= n

	var sxx, syy, sxy float64
	for _, p := range points {
		d := p.Sub(mean)
		sxx += d.X * d.X
		syy += d.Y * d.Y
		sxy += d.X * d.Y
	}

	half := (sxx + syy) / 2
	spread := math.Sqrt(math.Max(0, half*half-(sxx*syy-sxy*sxy)))
	largest, smallest := half+spread, half-spread

	return largest <= 0 || smallest/largest < collinearRatio
}

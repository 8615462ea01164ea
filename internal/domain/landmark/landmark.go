package landmark

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SubsetSize is the number of points in every landmark subset.
const SubsetSize = 6

var (
	// errBadPoint is returned when a point is not a 2 or 3 element array.
	errBadPoint = errors.New("point must have 2 or 3 coordinates")
	// errBadSubset is returned when a subset does not have SubsetSize indices.
	errBadSubset = errors.New("subset must have 6 indices")
)

// Point is one detector landmark in pixel coordinates; Z is relative depth.
type Point struct {
	// X is the horizontal pixel coordinate.
	X float64
	// Y is the vertical pixel coordinate.
	Y float64
	// Z is the detector's relative depth.
	Z float64
}

// XY drops the depth component.
func (p Point) XY() Point2 {
	return Point2{X: p.X, Y: p.Y}
}

// UnmarshalJSON accepts [x, y] or [x, y, z].
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("unmarshal point: %w", err)
	}

	switch len(coords) {
	case 2:
		*p = Point{X: coords[0], Y: coords[1]}
	case 3:
		*p = Point{X: coords[0], Y: coords[1], Z: coords[2]}
	default:
		return errBadPoint
	}

	return nil
}

// MarshalJSON writes the point as [x, y, z].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

// Point2 is a 2D image point.
type Point2 struct {
	// X is the horizontal pixel coordinate.
	X float64
	// Y is the vertical pixel coordinate.
	Y float64
}

// Sub returns p - q.
func (p Point2) Sub(q Point2) Point2 {
	return Point2{X: p.X - q.X, Y: p.Y - q.Y}
}

// Frame is one detector output. Frames are values owned by a single processing call.
type Frame struct {
	// Timestamp is the capture time in seconds; zero when unknown.
	Timestamp float64 `json:"timestamp,omitempty"`
	// Width is the image width in pixels.
	Width int `json:"width,omitempty"`
	// Height is the image height in pixels.
	Height int `json:"height,omitempty"`
	// Points are the landmarks in detector index order.
	Points []Point `json:"points"`
}

// EyeSample holds 6 eye points ordered corner, upper-left, upper-right,
// corner, lower-right, lower-left.
type EyeSample [SubsetSize]Point2

// PoseSample holds nose tip, chin, left eye corner, right eye corner,
// left mouth corner and right mouth corner.
type PoseSample [SubsetSize]Point2

// Indices maps detector indices to the subsets the analyzers need.
type Indices struct {
	// LeftEye lists left eye indices in EyeSample order.
	LeftEye [SubsetSize]int
	// RightEye lists right eye indices in EyeSample order.
	RightEye [SubsetSize]int
	// Pose lists pose indices in PoseSample order.
	Pose [SubsetSize]int
}

// NewIndices builds Indices from configured slices.
func NewIndices(leftEye, rightEye, pose []int) (Indices, error) {
	var indices Indices

	for _, subset := range []struct {
		name string
		src  []int
		dst  *[SubsetSize]int
	}{
		{"left eye", leftEye, &indices.LeftEye},
		{"right eye", rightEye, &indices.RightEye},
		{"pose", pose, &indices.Pose},
	} {
		if len(subset.src) != SubsetSize {
			return Indices{}, fmt.Errorf("build %s indices: %w", subset.name, errBadSubset)
		}

		copy(subset.dst[:], subset.src)
	}

	return indices, nil
}

// LeftEye extracts the left eye sample. ok is false when an index is out of range.
func (f *Frame) LeftEye(indices *Indices) (EyeSample, bool) {
	return f.pick(indices.LeftEye)
}

// RightEye extracts the right eye sample. ok is false when an index is out of range.
func (f *Frame) RightEye(indices *Indices) (EyeSample, bool) {
	return f.pick(indices.RightEye)
}

// Pose extracts the pose sample. ok is false when an index is out of range.
func (f *Frame) Pose(indices *Indices) (PoseSample, bool) {
	sample, ok := f.pick(indices.Pose)

	return PoseSample(sample), ok
}

// XY returns all points projected to the image plane.
func (f *Frame) XY() []Point2 {
	points := make([]Point2, len(f.Points))
	for i, p := range f.Points {
		points[i] = p.XY()
	}

	return points
}

func (f *Frame) pick(indices [SubsetSize]int) (EyeSample, bool) {
	var sample EyeSample

	for i, index := range indices {
		if index < 0 || index >= len(f.Points) {
			return EyeSample{}, false
		}

		sample[i] = f.Points[index].XY()
	}

	return sample, true
}

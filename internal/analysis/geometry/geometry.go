package geometry

import (
	"math"

	"github.com/oshokin/ergomon/internal/domain/landmark"
)

// Box is an axis-aligned bounding box in pixels.
type Box struct {
	// Min is the top-left corner.
	Min landmark.Point2
	// Max is the bottom-right corner.
	Max landmark.Point2
}

// Width returns the horizontal extent.
func (b Box) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent.
func (b Box) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Distance returns the Euclidean distance between two image points.
func Distance(a, b landmark.Point2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// AspectRatio returns the eye aspect ratio: the mean of the two vertical
// spans over the horizontal span. It returns 0 when the horizontal span is 0.
func AspectRatio(eye landmark.EyeSample) float64 {
	vertical := (Distance(eye[1], eye[5]) + Distance(eye[2], eye[4])) / 2

	horizontal := Distance(eye[0], eye[3])
	if horizontal == 0 {
		return 0
	}

	return vertical / horizontal
}

// Center returns the arithmetic mean of the points, or the zero point for empty input.
func Center(points []landmark.Point2) landmark.Point2 {
	if len(points) == 0 {
		return landmark.Point2{}
	}

	var sum landmark.Point2
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
	}

	n := float64(len(points))

	return landmark.Point2{X: sum.X / n, Y: sum.Y / n}
}

// EyeCenter returns the center of an eye sample.
func EyeCenter(eye landmark.EyeSample) landmark.Point2 {
	return Center(eye[:])
}

// BoundingBox returns the box enclosing the points, or the zero box for empty input.
func BoundingBox(points []landmark.Point2) Box {
	if len(points) == 0 {
		return Box{}
	}

	box := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}

	return box
}

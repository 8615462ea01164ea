// Package geometry extracts scalar features from landmark points: the eye
// aspect ratio, eye centers, pixel distances and bounding boxes.
//
// Degenerate input yields zero values. Callers treat zero as "unavailable"
// and keep it out of their statistics.
package geometry

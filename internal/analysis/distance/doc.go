// Package distance estimates the viewing distance from landmark geometry with
// a pinhole model and tracks how long the user has been too close.
//
// The inter-eye method is preferred; the face width method is the fallback.
// Readings are smoothed with a rolling mean of valid samples.
package distance

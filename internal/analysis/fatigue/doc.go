// Package fatigue tracks eye closure over time and classifies fatigue.
//
// The tracker counts blinks, keeps PERCLOS over a rolling window of frames,
// times continuous closure and derives a level from 0 (normal) to 3 (severe).
//
// Blinks per minute is a stepped statistic: the counter is published and
// reset once at least a minute has passed since the period started. When the
// user stops blinking entirely, the last published rate stays in effect.
package fatigue

// Package monitor wires the analyzers into the per-frame pipeline.
//
// Engine turns one landmark frame into a Snapshot: fatigue, viewing distance,
// head posture and a combined health score. It applies the alert priority
// policy and hands accepted alerts to the arbiter. Run feeds the engine from a
// stream of NDJSON frames and connects the configured sinks; Calibrate derives
// the camera focal length from a frame taken at a known distance.
package monitor

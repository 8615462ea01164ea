// Package clock provides the single time source shared by the analyzers and
// the alert arbiter. Real reads the wall clock with its monotonic reading;
// Manual is driven explicitly by tests and by frame timestamps during replay.
package clock

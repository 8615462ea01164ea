// Package window provides a fixed-capacity FIFO buffer used for rolling
// statistics: eye-state history for PERCLOS and distance smoothing.
//
// The oldest element is evicted on push when the buffer is full. Ring is not
// safe for concurrent use; every owner drives it from a single goroutine.
package window

// Package sink provides the notification sinks the arbiter dispatches to:
// spoken messages, a buzzer/LED pattern on a GPIO pin, the remote relay and a
// websocket hub for browser dashboards.
package sink

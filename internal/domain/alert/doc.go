// Package alert contains the domain types shared by the arbiter, the sinks
// and the relay.
//
// It defines Category and Severity, the Event handed to every sink, Actor
// (which machine and user raised the event) and the per-category Template
// used by presentation sinks. Clone helpers avoid leaking internal references.
package alert

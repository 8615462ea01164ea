// Package alert decides when the user is notified and delivers notifications.
//
// Arbiter gates every category behind a cooldown. The check and the record
// happen under one lock acquisition, so concurrent callers cannot both pass.
// Accepted events are delivered to every registered Sink by a bounded worker
// pool; a full queue drops the delivery instead of blocking the caller.
// Sink errors and panics are logged at the worker and never retried.
package alert

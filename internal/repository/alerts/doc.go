// Package alerts implements persistence for the relay's latest alerts.
//
// The FileRepository stores and loads the latest event per category as JSON
// on disk and exposes a Repository interface that the relay service depends on.
package alerts

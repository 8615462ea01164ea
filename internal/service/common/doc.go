// Package common holds helpers shared by several services.
//
// It provides a lightweight client for the alert relay with call timeouts and
// a helper that detects the current system actor (hostname/username) stamped
// on relayed alerts.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

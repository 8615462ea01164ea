// Package config defines monitor and relay settings and provides helpers to
// load, validate and save them in YAML format.
//
// Load starts from Default, so a file only needs the keys it changes.
// Validate rejects thresholds that would break classification; the error
// wraps ErrInvalidConfig.
package config

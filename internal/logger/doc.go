// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with console or JSON encoding,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The monitor pipeline, the alert dispatch pool and the relay all accept a
// context and extract the logger from it, so sink failures and alert firings
// are logged with the component name that produced them.
package logger

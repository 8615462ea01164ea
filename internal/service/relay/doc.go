// Package relay runs the alert relay: a gRPC server that receives alerts
// forwarded by monitors and keeps the latest event per category, mirrored to
// disk so a restarted relay still answers Latest.
package relay

// Package relay implements the gRPC transport of the alert relay.
//
// The AlertRelay service is described by hand over the protobuf well-known
// types: Deliver takes an event as google.protobuf.Struct and Latest returns
// the most recent event per category as google.protobuf.ListValue. The
// package provides the server handler, the client stub and the codec between
// domain events and Struct messages.
package relay

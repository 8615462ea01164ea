package relay

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "ergomon.relay.v1.AlertRelay"
	// DeliverFullMethod is the full method name of Deliver.
	DeliverFullMethod = "/" + ServiceName + "/Deliver"
	// LatestFullMethod is the full method name of Latest.
	LatestFullMethod = "/" + ServiceName + "/Latest"
)

// AlertRelayServer is the server API of the relay.
type AlertRelayServer interface {
	Deliver(ctx context.Context, event *structpb.Struct) (*emptypb.Empty, error)
	Latest(ctx context.Context, request *emptypb.Empty) (*structpb.ListValue, error)
}

// AlertRelayClient is the client API of the relay.
type AlertRelayClient interface {
	Deliver(ctx context.Context, event *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Latest(ctx context.Context, request *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

// ServiceDesc describes the AlertRelay service for grpc.Server.
//
//nolint:gochecknoglobals // grpc registers services by descriptor value.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlertRelayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Deliver",
			Handler:    deliverHandler,
		},
		{
			MethodName: "Latest",
			Handler:    latestHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ergomon/relay/v1/relay.proto",
}

// RegisterAlertRelayServer registers the implementation on the gRPC server.
func RegisterAlertRelayServer(registrar grpc.ServiceRegistrar, server AlertRelayServer) {
	registrar.RegisterService(&ServiceDesc, server)
}

// alertRelayClient implements AlertRelayClient over a connection.
type alertRelayClient struct {
	// cc is the client connection.
	cc grpc.ClientConnInterface
}

// NewAlertRelayClient creates a client stub.
func NewAlertRelayClient(cc grpc.ClientConnInterface) AlertRelayClient {
	return &alertRelayClient{cc: cc}
}

// Deliver sends one event to the relay.
func (c *alertRelayClient) Deliver(
	ctx context.Context,
	event *structpb.Struct,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, DeliverFullMethod, event, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Latest fetches the most recent event per category.
func (c *alertRelayClient) Latest(
	ctx context.Context,
	request *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, LatestFullMethod, request, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func deliverHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlertRelayServer).Deliver(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DeliverFullMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlertRelayServer).Deliver(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func latestHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlertRelayServer).Latest(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LatestFullMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlertRelayServer).Latest(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

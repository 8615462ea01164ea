package relay

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Record(ctx context.Context, event *domain.Event) error
	Latest(ctx context.Context) []*domain.Event
}

// Server implements the AlertRelay gRPC API.
type Server struct {
	// service provides the business logic for relay operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Deliver records an event forwarded by a monitor.
func (s *Server) Deliver(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	event, err := FromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err = s.service.Record(ctx, event); err != nil {
		return nil, status.Error(codes.Internal, "unable to record alert")
	}

	return new(emptypb.Empty), nil
}

// Latest returns the most recent event per category.
func (s *Server) Latest(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := ToList(s.service.Latest(ctx))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode alerts")
	}

	return list, nil
}

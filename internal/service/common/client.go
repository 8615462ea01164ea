//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	api "github.com/oshokin/ergomon/internal/api/grpc/relay"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// Client wraps the gRPC AlertRelay client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the relay.
	conn *grpc.ClientConn
	// api is the AlertRelay client stub.
	api api.AlertRelayClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errEventRequired is returned when an event is not provided.
	errEventRequired = errors.New("event must be provided")
)

// Dial prepares a gRPC connection to the relay. The connection is established lazily.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewAlertRelayClient(conn),
		callTimeout: config.DefaultRemoteTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Deliver forwards one event to the relay.
func (c *Client) Deliver(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return errEventRequired
	}

	request, err := api.ToStruct(event)
	if err != nil {
		return err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err = c.api.Deliver(callCtx, request); err != nil {
		return fmt.Errorf("deliver alert: %w", err)
	}

	return nil
}

// Latest retrieves the most recent event per category.
func (c *Client) Latest(ctx context.Context) ([]*domain.Event, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Latest(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get latest alerts: %w", err)
	}

	events, err := api.FromList(response)
	if err != nil {
		return nil, fmt.Errorf("decode latest alerts: %w", err)
	}

	return events, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

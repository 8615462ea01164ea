package relay

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/ergomon/internal/api/grpc/relay"
	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/logger"
	repository "github.com/oshokin/ergomon/internal/repository/alerts"
)

// Options controls the relay process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist the latest alerts.
	StateFile string
}

// ErrNoListenAddress indicates missing relay listen configuration.
var ErrNoListenAddress = errors.New("no relay listen address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Setup(settings.LogLevel, logger.Format(settings.LogFormat)); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	ctx = logger.WithName(ctx, "relay")

	stateFile := settings.Relay.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress := resolveListenAddress(settings.Relay.ListenAddress, opts.ListenAddress)
	if listenAddress == "" {
		return ErrNoListenAddress
	}

	svc, err := newService(ctx, repository.NewFileRepository(stateFile))
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	return Serve(ctx, lis, svc)
}

// Serve registers the relay service on a new gRPC server and serves lis until ctx is canceled.
func Serve(ctx context.Context, lis net.Listener, svc api.Service) error {
	grpcServer := grpc.NewServer()
	api.RegisterAlertRelayServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Relay listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress prefers the command line override over the configured address.
func resolveListenAddress(configured, override string) string {
	if override != "" {
		return override
	}

	return configured
}

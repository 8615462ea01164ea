package integration

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ergomon/internal/alert"
	"github.com/oshokin/ergomon/internal/alert/sink"
	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/service/common"
	"github.com/oshokin/ergomon/internal/service/relay"
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startRelay runs the relay with a temporary config and persistent state file.
// Returns the config path and a stop function that waits for shutdown.
func startRelay(t *testing.T, addr string, statePath string) (string, func()) {
	t.Helper()

	// Create cancellable context for server lifecycle.
	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "ergomon.yaml")

	cfg := config.Default()
	cfg.LogLevel = "warn"
	cfg.Relay.ListenAddress = addr
	cfg.Sinks.Remote.Address = addr

	require.NoError(t, config.Save(cfgPath, cfg))

	done := make(chan struct{})

	go func() {
		defer close(done)

		options := &relay.Options{
			ConfigPath: cfgPath,
			StateFile:  statePath,
		}

		_ = relay.Run(ctx, options) //nolint:errcheck // Failures surface as dial errors below.
	}()

	// Wait until the relay accepts connections.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	return cfgPath, func() {
		cancel()
		<-done
	}
}

func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// TestRelay_Roundtrip delivers events with the client and reads them back after a restart.
func TestRelay_Roundtrip(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)
	statePath := filepath.Join(t.TempDir(), "state.json")

	_, stop := startRelay(t, addr, statePath)

	ctx := context.Background()
	c := dial(t, addr)

	// Fresh relay has nothing to report.
	latest, err := c.Latest(ctx)
	require.NoError(t, err)
	require.Empty(t, latest)

	actor := &domain.Actor{
		Hostname: "test-hostname",
		Username: "test-user",
	}

	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	posture := domain.NewEvent(domain.CategoryPosture, "sit up", domain.SeverityWarning, at, actor)
	severe := domain.NewEvent(domain.CategorySevere, "rest now", domain.SeverityCritical, at, actor)

	require.NoError(t, c.Deliver(ctx, posture))
	require.NoError(t, c.Deliver(ctx, severe))

	latest, err = c.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, severe.ID, latest[0].ID)
	require.Equal(t, posture.ID, latest[1].ID)
	require.Equal(t, actor, latest[1].Source)
	require.True(t, at.Equal(latest[1].Timestamp))

	// Verify state was persisted to disk.
	_, err = os.Stat(statePath)
	require.NoError(t, err)

	stop()

	// A restarted relay answers from the state file.
	_, stop = startRelay(t, addr, statePath)
	defer stop()

	latest, err = dial(t, addr).Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
}

// TestRelay_RemoteSinkThroughArbiter fires an alert whose remote delivery lands on the relay.
func TestRelay_RemoteSinkThroughArbiter(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	cfgPath, stop := startRelay(t, addr, filepath.Join(t.TempDir(), "state.json"))
	defer stop()

	ctx := context.Background()

	arbiter := alert.New(ctx, alert.Options{
		Config: config.Default().Alert,
		Clock:  clock.NewManual(time.Unix(1_700_000_000, 0)),
		Source: &domain.Actor{Hostname: "desk", Username: "me"},
	})
	arbiter.Register(sink.NewRemote(dial(t, addr)))

	require.True(t, arbiter.Fire(ctx, domain.CategoryDistance, "move back", domain.SeverityWarning))
	require.False(t, arbiter.Fire(ctx, domain.CategoryDistance, "move back", domain.SeverityWarning))

	// Close waits for the delivery.
	arbiter.Close()

	var out bytes.Buffer

	require.NoError(t, relay.PrintLatest(ctx, &relay.LatestOptions{ConfigPath: cfgPath}, &out))
	require.Contains(t, out.String(), "distance")
	require.Contains(t, out.String(), "me@desk")
	require.Contains(t, out.String(), "move back")
}

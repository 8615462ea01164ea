package sink

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// startHub serves a running hub over httptest and dials one client.
func startHub(t *testing.T, hub *Web) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}

	require.NoError(t, json.Unmarshal(data, &frame))

	return frame.Event, frame.Data
}

// TestWeb_BroadcastsAlert pushes a rendered alert to a connected browser.
func TestWeb_BroadcastsAlert(t *testing.T) {
	t.Parallel()

	hub := NewWeb(config.Default().Sinks.Web, nil)
	conn := startHub(t, hub)

	event := testEvent(domain.CategorySevere)
	require.NoError(t, hub.Deliver(context.Background(), event))

	name, data := readMessage(t, conn)
	require.Equal(t, EventAlert, name)

	var payload AlertPayload
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Equal(t, AlertPayload{
		ID:        event.ID.String(),
		Type:      "severe",
		Title:     "Severe Fatigue Warning",
		Message:   "Immediate rest required! You have been working too long without a break.",
		Level:     "warning",
		VoiceText: "Severe fatigue detected! Please rest immediately.",
		Timestamp: 1_700_000_000,
	}, payload)
}

// TestWeb_ThrottlesStatus drops status frames inside the interval.
func TestWeb_ThrottlesStatus(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(time.Unix(0, 0))
	hub := NewWeb(config.WebSinkConfig{StatusInterval: time.Second}, clk)
	conn := startHub(t, hub)

	ctx := context.Background()

	require.True(t, hub.PublishStatus(ctx, map[string]int{"seq": 1}))
	require.False(t, hub.PublishStatus(ctx, map[string]int{"seq": 2}))

	clk.Advance(time.Second)
	require.True(t, hub.PublishStatus(ctx, map[string]int{"seq": 3}))

	for _, want := range []int{1, 3} {
		name, data := readMessage(t, conn)
		require.Equal(t, EventStatus, name)

		var status map[string]int
		require.NoError(t, json.Unmarshal(data, &status))
		require.Equal(t, want, status["seq"])
	}
}

// TestWeb_StoppedHub rejects alerts once Run has returned.
func TestWeb_StoppedHub(t *testing.T) {
	t.Parallel()

	hub := NewWeb(config.Default().Sinks.Web, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	require.ErrorIs(t, hub.Deliver(context.Background(), testEvent(domain.CategoryPosture)), errHubStopped)
	require.Equal(t, "web", hub.Name())
}

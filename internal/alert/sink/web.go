package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/logger"
)

const (
	// writeWait is how long to wait for a write to complete.
	writeWait = 10 * time.Second
	// pongWait is how long to wait for a pong response.
	pongWait = 60 * time.Second
	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize caps inbound frames; browsers only send pongs.
	maxMessageSize = 4 * 1024
	// clientBuffer is the per-client outbound queue.
	clientBuffer = 64
	// broadcastBuffer is the hub inbound queue.
	broadcastBuffer = 256
	// readHeaderTimeout bounds request header reads on the HTTP server.
	readHeaderTimeout = 5 * time.Second
	// shutdownTimeout bounds the HTTP server shutdown.
	shutdownTimeout = 5 * time.Second
)

// Event names pushed to browsers.
const (
	// EventAlert carries an accepted alert.
	EventAlert = "alert"
	// EventStatus carries the latest monitor snapshot.
	EventStatus = "status_update"
)

// errHubStopped is returned when the hub loop is not running.
var errHubStopped = errors.New("web hub is not running")

// Message is one websocket frame.
type Message struct {
	// Event is EventAlert or EventStatus.
	Event string `json:"event"`
	// Data is the payload.
	Data any `json:"data"`
}

// AlertPayload is the browser view of an alert.
type AlertPayload struct {
	// ID is the event identifier.
	ID string `json:"id"`
	// Type is the category.
	Type string `json:"type"`
	// Title is the template headline.
	Title string `json:"title"`
	// Message is the template explanation.
	Message string `json:"message"`
	// Level is the severity.
	Level string `json:"level"`
	// VoiceText is read aloud by the dashboard.
	VoiceText string `json:"voice_text"`
	// Timestamp is the event time in Unix seconds.
	Timestamp float64 `json:"timestamp"`
}

// webClient is one websocket connection.
type webClient struct {
	// conn is the upgraded connection.
	conn *websocket.Conn
	// send queues encoded frames for the write pump.
	send chan []byte
}

// Web is a websocket hub pushing alerts and throttled status updates to browsers.
type Web struct {
	// clients are the registered connections, owned by Run.
	clients map[*webClient]struct{}
	// register adds a client.
	register chan *webClient
	// unregister removes a client.
	unregister chan *webClient
	// broadcast carries encoded frames to every client.
	broadcast chan []byte
	// done is closed when Run returns.
	done chan struct{}
	// count mirrors len(clients) for readers outside Run.
	count atomic.Int32

	// upgrader accepts websocket handshakes.
	upgrader websocket.Upgrader

	// clock drives status throttling.
	clock clock.Clock
	// interval is the minimum time between two status frames.
	interval time.Duration
	// statusMu guards lastStatus.
	statusMu sync.Mutex
	// lastStatus is when the last status frame was queued.
	lastStatus time.Time
}

// NewWeb creates the hub. Run must be started before clients connect.
func NewWeb(cfg config.WebSinkConfig, clk clock.Clock) *Web {
	if clk == nil {
		clk = clock.Real{}
	}

	return &Web{
		clients:    make(map[*webClient]struct{}),
		register:   make(chan *webClient),
		unregister: make(chan *webClient),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clock:    clk,
		interval: cfg.StatusInterval,
	}
}

// Run owns the client set until ctx is canceled.
func (w *Web) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			for c := range w.clients {
				w.drop(c)
			}

			return
		case c := <-w.register:
			w.clients[c] = struct{}{}
			w.count.Add(1)
			logger.InfoKV(ctx, "Dashboard connected", "clients", len(w.clients))
		case c := <-w.unregister:
			if _, ok := w.clients[c]; ok {
				w.drop(c)
				logger.InfoKV(ctx, "Dashboard disconnected", "clients", len(w.clients))
			}
		case frame := <-w.broadcast:
			for c := range w.clients {
				select {
				case c.send <- frame:
				default:
					w.drop(c)
					logger.Warn(ctx, "Dropped slow dashboard client")
				}
			}
		}
	}
}

func (w *Web) drop(c *webClient) {
	delete(w.clients, c)
	w.count.Add(-1)
	close(c.send)
}

// ClientCount returns the number of connected clients.
func (w *Web) ClientCount() int {
	return int(w.count.Load())
}

// Name returns the sink name.
func (w *Web) Name() string {
	return "web"
}

// Deliver pushes the alert rendered with its category template.
func (w *Web) Deliver(ctx context.Context, event *domain.Event) error {
	template := domain.TemplateFor(event)

	return w.publish(ctx, Message{
		Event: EventAlert,
		Data: AlertPayload{
			ID:        event.ID.String(),
			Type:      string(event.Category),
			Title:     template.Title,
			Message:   template.Message,
			Level:     string(event.Severity),
			VoiceText: template.Voice,
			Timestamp: float64(event.Timestamp.UnixMilli()) / 1e3,
		},
	})
}

// PublishStatus pushes a status frame unless one was pushed less than the
// configured interval ago. It reports whether the frame was queued.
func (w *Web) PublishStatus(ctx context.Context, status any) bool {
	now := w.clock.Now()

	w.statusMu.Lock()
	if !w.lastStatus.IsZero() && now.Sub(w.lastStatus) < w.interval {
		w.statusMu.Unlock()

		return false
	}

	w.lastStatus = now
	w.statusMu.Unlock()

	if err := w.publish(ctx, Message{Event: EventStatus, Data: status}); err != nil {
		logger.DebugKV(ctx, "Status update dropped", "error", err)

		return false
	}

	return true
}

func (w *Web) publish(ctx context.Context, message Message) error {
	frame, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode %s: %w", message.Event, err)
	}

	select {
	case <-w.done:
		return errHubStopped
	default:
	}

	select {
	case w.broadcast <- frame:
		return nil
	default:
		logger.WarnKV(ctx, "Broadcast queue full, dropping frame", "event", message.Event)

		return nil
	}
}

// ServeHTTP upgrades the request and pumps frames until the connection closes.
func (w *Web) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		logger.WarnKV(r.Context(), "Websocket upgrade failed", "error", err)

		return
	}

	c := &webClient{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	select {
	case w.register <- c:
	case <-w.done:
		_ = conn.Close()

		return
	}

	go c.writePump()

	c.readPump()

	select {
	case w.unregister <- c:
	case <-w.done:
	}
}

// readPump drains the connection to process pongs and detect disconnection.
func (c *webClient) readPump() {
	defer func() {
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer of the connection.
func (c *webClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Serve runs the hub and an HTTP server exposing it at /ws until ctx is canceled.
func (w *Web) Serve(ctx context.Context, address string) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", w)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go w.Run(ctx)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	logger.InfoKV(ctx, "Dashboard hub listening", "listen_address", lis.Addr().String())

	if err = server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve dashboard: %w", err)
	}

	return nil
}
